// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

//go:build tools

// Package main pins test dependencies that are only reached from build-tagged
// suites to go.mod.
package main

import (
	_ "github.com/onsi/ginkgo/v2"
	_ "github.com/onsi/gomega"
	_ "github.com/stretchr/testify/mock"
)
