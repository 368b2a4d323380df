// Package docrun runs commands against code blocks in documentation files.
package docrun

// Version is the docrun release version.
const Version = "0.1.0"
