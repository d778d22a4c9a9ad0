package buildinfo

import (
	"runtime"
	"runtime/debug"
	"testing"
)

func TestBinaryVersion(t *testing.T) {
	if BinaryVersion != "dev" {
		t.Errorf("Expected BinaryVersion to be 'dev', got '%s'", BinaryVersion)
	}
}

func TestModuleVersionIntegration(t *testing.T) {
	expected := ""
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		expected = info.Main.Version
	}

	if actual := ModuleVersion(); expected != actual {
		t.Errorf("ModuleVersion() = '%s', expected '%s'", actual, expected)
	}
}

func TestCollect(t *testing.T) {
	info := Collect()
	if info.Version != BinaryVersion {
		t.Errorf("Version = %q, expected %q", info.Version, BinaryVersion)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, expected %q", info.GoVersion, runtime.Version())
	}
	if info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("unexpected platform %q", info.Platform)
	}
}
