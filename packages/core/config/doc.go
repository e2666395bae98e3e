// Package config loads rpreporter settings.
//
// Settings come from an rpreporter.yaml file, RP_-prefixed environment
// variables and an optional .env file, in increasing order of precedence
// for the environment over the file.
package config
