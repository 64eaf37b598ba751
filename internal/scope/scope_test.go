package scope

import "testing"

func TestFilter_DenyBeatsAllow(t *testing.T) {
	f := NewFilter("example.com", Config{
		AllowPatterns: []string{".*"},
		DenyPatterns:  []string{"/admin"},
	})
	d := f.Check("https://example.com/admin/x")
	if d.Allowed {
		t.Fatalf("expected deny, got allowed")
	}
}

func TestFilter_EmptyAllowListAllowsAllNotDenied(t *testing.T) {
	f := NewFilter("example.com", Config{
		DenyPatterns: []string{"/admin"},
	})
	if !f.Check("https://example.com/home").Allowed {
		t.Error("expected /home to be allowed with empty allow list")
	}
	if f.Check("https://example.com/admin/x").Allowed {
		t.Error("expected /admin/x to still be denied")
	}
}

func TestFilter_ExternalDomainDenied(t *testing.T) {
	f := NewFilter("example.com", Config{AllowExternalDomains: false})
	if f.Check("https://other.com/").Allowed {
		t.Error("expected external domain to be denied")
	}
}

func TestFilter_ExternalDomainAllowedWhenConfigured(t *testing.T) {
	f := NewFilter("example.com", Config{AllowExternalDomains: true})
	if !f.Check("https://other.com/").Allowed {
		t.Error("expected external domain to be allowed")
	}
}

func TestFilter_InvalidURLDenied(t *testing.T) {
	f := NewFilter("example.com", Config{})
	d := f.Check("://broken")
	if d.Allowed || d.Reason != "Invalid URL" {
		t.Errorf("expected Invalid URL denial, got %+v", d)
	}
}

func TestFilter_ExcludeQueryPatternsStrippedBeforeMatching(t *testing.T) {
	f := NewFilter("example.com", Config{
		DenyPatterns:         []string{`\?session=`},
		ExcludeQueryPatterns: []string{"^session$"},
	})
	d := f.Check("https://example.com/path?session=abc")
	if !d.Allowed {
		t.Errorf("expected allowed once tracking query stripped, got %+v", d)
	}
}

func TestValidateConfig_ReportsInvalidPatterns(t *testing.T) {
	invalid := ValidateConfig(Config{AllowPatterns: []string{"(unterminated"}})
	if len(invalid) != 1 {
		t.Fatalf("expected 1 invalid pattern, got %d", len(invalid))
	}
}

func TestFilter_InvalidPatternsAreSkippedNotFatal(t *testing.T) {
	f := NewFilter("example.com", Config{AllowPatterns: []string{"(unterminated", ".*"}})
	if !f.Check("https://example.com/x").Allowed {
		t.Error("a valid pattern alongside an invalid one should still be usable")
	}
}
