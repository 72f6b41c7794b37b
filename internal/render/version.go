package render

import (
	"context"
	"regexp"
	"strings"
)

var versionPattern = regexp.MustCompile(`(\d+\.\d+\.\d+)`)

// DetectVersion best-effort reads the renderer version ("1.2024.7"). It
// returns an empty string when the binary is missing or prints no version.
func DetectVersion(ctx context.Context, runner CommandRunner, binary string) string {
	if runner == nil {
		runner = ExecRunner{}
	}
	res, err := runner.Run(ctx, binary, "-version")
	if err != nil || res.ExitCode != 0 {
		return ""
	}
	return parseVersion(res.Stdout)
}

// parseVersion extracts the first dotted version from plantuml -version output:
//
//	PlantUML version 1.2024.7 (Sun Sep 22 12:00:00 UTC 2024)
func parseVersion(output string) string {
	if m := versionPattern.FindStringSubmatch(output); len(m) == 2 {
		return m[1]
	}
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	return strings.TrimSpace(line)
}
