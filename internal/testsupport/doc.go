// Package testsupport holds fixtures shared by package tests: isolated
// configurations, opened stores and generated files.
package testsupport
