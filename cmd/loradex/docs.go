package main

// General API documentation for swaggo, read by `swag init -g cmd/loradex/docs.go`.
//
// @title           loradex API
// @version         1.0
// @description     HTTP API for browsing and annotating a local LoRA safetensors catalog.
//
// @contact.name   loradex maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
