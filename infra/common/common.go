package common

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// AppName prefixes every resource the guide owns.
const AppName = "explorer-guide"

// GCP is the project and region every stack resource is created in.
type GCP struct {
	Project string
	Region  string
}

func GCPConfig(ctx *pulumi.Context) GCP {
	cfg := config.New(ctx, "gcp")
	return GCP{
		Project: cfg.Require("project"),
		Region:  cfg.Require("region"),
	}
}

// Labels tags resources with the app and the component that owns them.
func Labels(component string) pulumi.StringMap {
	return pulumi.StringMap{
		"app":       pulumi.String(AppName),
		"component": pulumi.String(component),
	}
}

// skipDirs are not part of the API image build context.
var skipDirs = map[string]bool{
	".git":      true,
	"infra":     true,
	"_examples": true,
}

// SourceHash fingerprints the Go sources and build files under root so the
// image tag only changes when the image contents would.
func SourceHash(root string) (string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 || strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(files)

	h := sha256.New()
	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return "", err
		}
		io.WriteString(h, filepath.ToSlash(rel))
		if err := copyFile(h, file); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

func copyFile(w io.Writer, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
