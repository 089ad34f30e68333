package main

import (
	"go.trai.ch/devshell/internal/adapters/catalog"
	"go.trai.ch/devshell/internal/core/domain"
)

func newGitProvider() *catalog.MemoryProvider {
	return catalog.NewMemoryProvider(map[domain.PlatformID]map[string]domain.Artifact{
		domain.PlatformX8664Linux: {
			"git": {ID: "/nix/store/git", Name: "git", Outputs: []string{"/nix/store/git"}},
		},
	})
}
