package capability

import (
	"testing"

	"github.com/raventerminal/core/manifest"
)

func TestParseCapabilityString(t *testing.T) {
	c, ok := ParseCapabilityString("fs.read:/home/user/project")
	if !ok || c.Kind != FileSystemRead || c.Path.Base != "/home/user/project" {
		t.Fatalf("unexpected parse: %+v ok=%v", c, ok)
	}
	if _, ok := ParseCapabilityString("not.a.capability"); ok {
		t.Error("expected unknown capability string to fail parsing")
	}
}

func TestFromManifestSkipsUnknown(t *testing.T) {
	m := &manifest.PluginManifest{
		Name:         "x",
		Capabilities: []string{"block.read", "bogus.thing", "fs.write:/tmp"},
	}
	set := FromManifest(m)
	if !set.Has(Capability{Kind: BlockRead}) {
		t.Error("expected block.read to be granted")
	}
	if len(set.List()) != 2 {
		t.Errorf("expected 2 recognized capabilities, got %d", len(set.List()))
	}
}

func TestCheckFileAccessRecursive(t *testing.T) {
	set := NewSet("x")
	set.Add(Capability{Kind: FileSystemRead, Path: PathPattern{Base: "/home/user/project", Recursive: true}})
	if err := set.CheckFileAccess("/home/user/project/sub/file.go", false); err != nil {
		t.Errorf("expected recursive read access to be granted: %v", err)
	}
	if err := set.CheckFileAccess("/etc/passwd", false); err == nil {
		t.Error("expected access outside the granted path to be denied")
	}
}
