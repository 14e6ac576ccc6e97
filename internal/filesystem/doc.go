// Package filesystem provides the operating system backed file access shared by relver services.
package filesystem
