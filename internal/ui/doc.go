// Package ui renders executed commands as short console lines.
//
// ConsoleCommandEventLogger is installed as the execshell observer when the
// console log format is selected, so a developer running a build locally sees
// "Creating archive ..." rather than JSON records.
package ui
