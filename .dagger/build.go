package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/agentui/internal/dagger"
)

// Build and return directory of agentui binaries.
//
// go-sqlite3 needs CGO, so each architecture builds natively in a
// container of that platform instead of cross-compiling.
func (a *Agentui) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	goarches := []string{"amd64", "arm64"}

	outputs := dag.Directory()

	for _, goarch := range goarches {
		path := fmt.Sprintf("linux/%s/", goarch)

		build := dag.Container(dagger.ContainerOpts{Platform: dagger.Platform("linux/" + goarch)}).
			From("golang:1.25-bookworm").
			WithExec([]string{"apt-get", "update"}).
			WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
			WithEnvVariable("CGO_ENABLED", "1").
			WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod-"+goarch)).
			WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build-"+goarch)).
			WithDirectory("/src", a.Source).
			WithWorkdir("/src").
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/agentui"})

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (a *Agentui) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papercomputeco/agentui/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papercomputeco/agentui/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papercomputeco/agentui/pkg/utils.Buildtime=%s'", buildtime),
	}

	return a.Build(ctx, strings.Join(ldflags, " "))
}
