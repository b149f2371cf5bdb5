package domain

import "testing"

func TestScanKeywords_OnceCreditPerItem(t *testing.T) {
	items := []Item{
		{"messageText": "Our PROTOCOL-team loves #protocol chats, protocol, protocol."},
	}

	report := ScanKeywords(items, []string{"protocol"})
	if report.Counts["protocol"] != 1 {
		t.Errorf("expected 1 credit for repeated keyword, got %d", report.Counts["protocol"])
	}
	if report.Total != 1 {
		t.Errorf("expected total 1, got %d", report.Total)
	}
}

func TestScanKeywords_WholeTokenBoundary(t *testing.T) {
	items := []Item{
		{"messageText": "cryptoprotocol"},
		{"messageText": "protocols"},
	}

	report := ScanKeywords(items, []string{"protocol"})
	if report.Counts["protocol"] != 0 {
		t.Errorf("embedded keyword must not match, got %d credits", report.Counts["protocol"])
	}
}

func TestScanKeywords_HashtagBoundary(t *testing.T) {
	items := []Item{
		{"messageText": "all in on #ai today"},
	}

	report := ScanKeywords(items, []string{"ai"})
	if report.Counts["ai"] != 1 {
		t.Errorf("hashtag-prefixed keyword must match, got %d", report.Counts["ai"])
	}
}

func TestScanKeywords_CaseInsensitive(t *testing.T) {
	items := []Item{
		{"messageText": "AI is everywhere"},
		{"messageText": "Cluster restarted"},
	}

	report := ScanKeywords(items, []string{"ai", "cluster"})
	if report.Counts["ai"] != 1 || report.Counts["cluster"] != 1 {
		t.Errorf("case-insensitive match failed: %v", report.Counts)
	}
	if report.Total != 2 {
		t.Errorf("expected total 2, got %d", report.Total)
	}
}

func TestScanKeywords_NestedStringFields(t *testing.T) {
	items := []Item{
		{
			"name": "general",
			"activity": map[string]any{
				"lastMessage": "protocol upgrade shipped",
				"count":       float64(3),
			},
		},
	}

	report := ScanKeywords(items, []string{"protocol"})
	if report.Counts["protocol"] != 1 {
		t.Errorf("nested string field not scanned, got %d", report.Counts["protocol"])
	}
}

func TestScanKeywords_UnscannableItemsSkipped(t *testing.T) {
	items := []Item{
		{"count": float64(42), "flag": true},
		nil,
		{},
		{"messageText": "ai"},
	}

	report := ScanKeywords(items, []string{"ai"})
	if report.Counts["ai"] != 1 {
		t.Errorf("expected 1 credit, got %d", report.Counts["ai"])
	}
}

func TestScanKeywords_ZeroCountsPresent(t *testing.T) {
	items := []Item{
		{"messageText": "nothing relevant here"},
	}

	report := ScanKeywords(items, nil)
	if len(report.Counts) != len(DefaultKeywords) {
		t.Fatalf("expected %d keyword entries, got %d", len(DefaultKeywords), len(report.Counts))
	}
	for _, kw := range DefaultKeywords {
		if _, ok := report.Counts[kw]; !ok {
			t.Errorf("missing entry for keyword %q", kw)
		}
	}
	if report.Total != 0 {
		t.Errorf("expected total 0, got %d", report.Total)
	}
}

func TestScanKeywords_TotalEqualsSum(t *testing.T) {
	items := []Item{
		{"messageText": "ai and protocol in one item"},
		{"messageText": "just ai"},
		{"groupName": "cluster ops"},
	}

	report := ScanKeywords(items, []string{"ai", "protocol", "cluster"})
	sum := 0
	for _, n := range report.Counts {
		sum += n
	}
	if report.Total != sum {
		t.Errorf("total %d != sum of counts %d", report.Total, sum)
	}
	if report.Total != 4 {
		t.Errorf("expected total 4, got %d", report.Total)
	}
}
