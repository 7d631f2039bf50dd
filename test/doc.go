// Package test holds integration tests that run the whole service.
package test
