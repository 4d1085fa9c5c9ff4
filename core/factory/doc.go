// Package factory builds pluggable modules, such as metrics sinks, from a
// type name and a free-form configuration map.
package factory
