package scorm

import (
	"edu_market_backend/internal/util"
	"errors"
	"testing"
)

const sampleManifest12 = `<?xml version="1.0"?>
<manifest identifier="com.example.golf" version="1.2"
          xmlns="http://www.imsproject.org/xsd/imscp_rootv1p1p2">
  <organizations default="golf_org">
    <organization identifier="golf_org">
      <title>Golf Explained</title>
    <item identifier="item_1" identifierref="resource_1">
        <title>Playing the Game</title>
      </item>
    </organization>
    <organization identifier="other_org">
      <title>Wrong Title</title>
    </organization>
  </organizations>
  <resources>
    <resource identifier="resource_1" type="webcontent" adlcp:scormtype="sco" href="content/index.html">
      <file href="content/index.html"/>
      <file href="content/style.css"/>
    </resource>
  </resources>
</manifest>`

func TestParseManifestScorm12(t *testing.T) {
	manifest, err := ParseManifest(sampleManifest12, "scorm/imsmanifest.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if manifest.Version != Version12 {
		t.Errorf("version = %q, want %q", manifest.Version, Version12)
	}
	if manifest.ManifestIdentifier != "com.example.golf" {
		t.Errorf("identifier = %q", manifest.ManifestIdentifier)
	}
	if manifest.Title != "Golf Explained" {
		t.Errorf("title = %q, want title from default organization", manifest.Title)
	}
	if manifest.LaunchPath != "scorm/content/index.html" {
		t.Errorf("launchPath = %q, want %q", manifest.LaunchPath, "scorm/content/index.html")
	}
}

func TestParseManifestRootLevel(t *testing.T) {
	manifest, err := ParseManifest(sampleManifest12, "imsmanifest.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manifest.LaunchPath != "content/index.html" {
		t.Errorf("launchPath = %q", manifest.LaunchPath)
	}
}

func TestParseManifestVersionSniffing(t *testing.T) {
	cases := []struct {
		name string
		xml  string
		want string
	}{
		{"adlcp_v1p3 token", `<manifest xmlns:adlcp="http://www.adlnet.org/xsd/adlcp_v1p3"><resources><resource identifier="r" href="a.html"/></resources></manifest>`, Version2004},
		{"imsss token", `<manifest xmlns:imsss="http://www.imsglobal.org/xsd/imsss_v1p0"><resources><resource identifier="r" href="a.html"/></resources></manifest>`, Version2004},
		{"2004 literal", `<manifest version="2004 4th Edition"><resources><resource identifier="r" href="a.html"/></resources></manifest>`, Version2004},
		{"no tokens", `<manifest version="1.2"><resources><resource identifier="r" href="a.html"/></resources></manifest>`, Version12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			manifest, err := ParseManifest(tc.xml, "imsmanifest.xml")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if manifest.Version != tc.want {
				t.Errorf("version = %q, want %q", manifest.Version, tc.want)
			}
		})
	}
}

func TestParseManifestFirstResourceFallback(t *testing.T) {
	// item没有identifierref时回退到第一个resource
	xml := `<manifest>
  <organizations default="org1">
    <organization identifier="org1">
      <title>No Ref</title>
      <item identifier="item_1"/>
    </organization>
  </organizations>
  <resources>
    <resource identifier="first" href="start.html"/>
    <resource identifier="second" href="other.html"/>
  </resources>
</manifest>`

	manifest, err := ParseManifest(xml, "imsmanifest.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manifest.LaunchPath != "start.html" {
		t.Errorf("launchPath = %q, want first declared resource", manifest.LaunchPath)
	}
}

func TestParseManifestFileHrefFallback(t *testing.T) {
	// resource自身无href时用第一个嵌套<file href>
	xml := `<manifest>
  <organizations><organization identifier="o"><item identifierref="r1"/></organization></organizations>
  <resources>
    <resource identifier="r1" type="webcontent">
      <file href="lesson/main.html"/>
      <file href="lesson/extra.js"/>
    </resource>
  </resources>
</manifest>`

	manifest, err := ParseManifest(xml, "imsmanifest.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manifest.LaunchPath != "lesson/main.html" {
		t.Errorf("launchPath = %q", manifest.LaunchPath)
	}
}

func TestParseManifestDuplicateResourceLastWins(t *testing.T) {
	xml := `<manifest>
  <organizations><organization identifier="o"><item identifierref="r1"/></organization></organizations>
  <resources>
    <resource identifier="r1" href="old.html"/>
    <resource identifier="r1" href="new.html"/>
  </resources>
</manifest>`

	manifest, err := ParseManifest(xml, "imsmanifest.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manifest.LaunchPath != "new.html" {
		t.Errorf("launchPath = %q, want last duplicate to win", manifest.LaunchPath)
	}
}

func TestParseManifestNoLaunch(t *testing.T) {
	cases := []struct {
		name string
		xml  string
	}{
		{"no resources", `<manifest><organizations/></manifest>`},
		{"resource without href", `<manifest><resources><resource identifier="r1" type="webcontent"></resource></resources></manifest>`},
		{"dangling identifierref", `<manifest><organizations><organization identifier="o"><item identifierref="missing"/></organization></organizations><resources><resource identifier="r1" href="a.html"/></resources></manifest>`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseManifest(tc.xml, "imsmanifest.xml"); !errors.Is(err, util.ErrManifestNoLaunch) {
				t.Fatalf("expected ErrManifestNoLaunch, got %v", err)
			}
		})
	}
}

func TestParseManifestRejectsEscapingHref(t *testing.T) {
	xml := `<manifest>
  <resources>
    <resource identifier="r1" href="../../etc/passwd"/>
  </resources>
</manifest>`

	if _, err := ParseManifest(xml, "imsmanifest.xml"); !errors.Is(err, util.ErrManifestBadLaunch) {
		t.Fatalf("expected ErrManifestBadLaunch, got %v", err)
	}
}

func TestParseManifestSingleQuotedAttributes(t *testing.T) {
	xml := `<manifest identifier='pkg-1'>
  <organizations default='org'>
    <organization identifier='org'><title>Quoted</title><item identifierref='r'/></organization>
  </organizations>
  <resources><resource identifier='r' href='index.htm'/></resources>
</manifest>`

	manifest, err := ParseManifest(xml, "imsmanifest.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manifest.Title != "Quoted" || manifest.LaunchPath != "index.htm" || manifest.ManifestIdentifier != "pkg-1" {
		t.Errorf("unexpected parse result: %+v", manifest)
	}
}
