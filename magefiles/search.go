//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search builds the CLI and queries the evidence sources for keyword.
func Search(keyword string) error {
	mg.Deps(Build)
	return sh.RunV(binPath, "search", keyword)
}

// Ask builds the CLI and answers a single question.
func Ask(question string) error {
	mg.Deps(Build)
	return sh.RunV(binPath, "ask", question)
}

// Serve builds the CLI and starts the HTTP chat API.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "serve")
}
