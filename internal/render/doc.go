// Package render turns a conversion request into a wkhtmltopdf invocation:
// it builds the argument vector, locates the binary and runs it.
package render
