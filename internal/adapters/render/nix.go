package render

import (
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/zerr"
)

// Nix renders a mkShell expression that pins every artifact to its nixpkgs revision.
// Artifacts sharing a revision share one flake input.
func Nix(desc domain.EnvironmentDescriptor) (string, error) {
	system := desc.Platform().String()

	commits := make(map[string][]string)
	for _, a := range desc.Artifacts() {
		if a.Rev == "" || a.AttrPath == "" {
			err := zerr.With(domain.ErrUnrenderableArtifact, "package", a.Name)
			return "", zerr.With(err, "platform", system)
		}
		attr := strings.TrimPrefix(a.AttrPath, "legacyPackages."+system+".")
		if !slices.Contains(commits[a.Rev], attr) {
			commits[a.Rev] = append(commits[a.Rev], attr)
		}
	}

	return generateNixExpr(system, commits, desc.Hook()), nil
}

func generateNixExpr(system string, commits map[string][]string, hook string) string {
	var builder strings.Builder

	builder.WriteString("let\n")
	builder.WriteString(fmt.Sprintf("system = %q;\n", system))

	// flake_0 corresponds to the first sorted commit
	commitHashes := make([]string, 0, len(commits))
	for hash := range commits {
		commitHashes = append(commitHashes, hash)
	}
	slices.Sort(commitHashes)

	for i, commitHash := range commitHashes {
		builder.WriteString(fmt.Sprintf("flake_%d = builtins.getFlake \"github:NixOS/nixpkgs/%s\";\n",
			i, commitHash))
		builder.WriteString(fmt.Sprintf("pkgs_%d = flake_%d.legacyPackages.${system};\n",
			i, i))
	}
	if len(commitHashes) == 0 {
		builder.WriteString("pkgs_0 = import <nixpkgs> { inherit system; };\n")
	}

	builder.WriteString("in\n")
	builder.WriteString("pkgs_0.mkShell {\n")
	builder.WriteString("buildInputs = [\n")

	for i, commitHash := range commitHashes {
		packages := slices.Clone(commits[commitHash])
		slices.Sort(packages)

		for _, pkg := range packages {
			builder.WriteString(fmt.Sprintf("pkgs_%d.%s\n", i, pkg))
		}
	}

	builder.WriteString("];\n")

	if hook != "" {
		builder.WriteString("shellHook = ''\n")
		builder.WriteString(escapeIndented(hook))
		if !strings.HasSuffix(hook, "\n") {
			builder.WriteString("\n")
		}
		builder.WriteString("'';\n")
	}

	builder.WriteString("}\n")

	return builder.String()
}

// escapeIndented escapes s for a Nix indented string.
func escapeIndented(s string) string {
	s = strings.ReplaceAll(s, "''", "'''")
	return strings.ReplaceAll(s, "${", "''${")
}
