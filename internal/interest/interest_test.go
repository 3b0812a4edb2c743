package interest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleNotice = `🏦 농협대출[납입도래](061-2210-35**-**) 09월01일
이자 : 1,234,567 원 예상
▶관리점 : 고창농협`

func TestParseNotice(t *testing.T) {
	notice, err := ParseNotice(sampleNotice)
	if err != nil {
		t.Fatalf("ParseNotice: %v", err)
	}
	if notice.Amount != 1234567 {
		t.Errorf("amount = %d, want 1234567", notice.Amount)
	}
	if notice.Branch != "고창농협" {
		t.Errorf("branch = %q, want 고창농협", notice.Branch)
	}
}

func TestParseNoticeAltPattern(t *testing.T) {
	msg := "농협 납입예상금액 : 500,000 원"
	notice, err := ParseNotice(msg)
	if err != nil {
		t.Fatalf("ParseNotice: %v", err)
	}
	if notice.Amount != 500000 {
		t.Errorf("amount = %d, want 500000", notice.Amount)
	}
	if notice.Branch != "농협" {
		t.Errorf("branch = %q, want 농협", notice.Branch)
	}
}

func TestParseNoticeUnknownBranch(t *testing.T) {
	notice, err := ParseNotice("이자 : 1,000 원 예상")
	if err != nil {
		t.Fatalf("ParseNotice: %v", err)
	}
	if notice.Branch != "알 수 없음" {
		t.Errorf("branch = %q", notice.Branch)
	}
}

func TestParseNoticeNoAmount(t *testing.T) {
	if _, err := ParseNotice("고창농협 안내문입니다"); err == nil {
		t.Error("message without an amount must error")
	}
}

func TestDistributeDefaultSplit(t *testing.T) {
	dist := Distribute(1000000, "어딘가농협", nil)

	if dist[FeeLabel] != 50000 {
		t.Errorf("fee = %d, want 50000", dist[FeeLabel])
	}
	// 950,000 split 0.3333 / 0.3334 / 0.3333, truncated.
	if dist["투자자A"] != 316635 {
		t.Errorf("투자자A = %d, want 316635", dist["투자자A"])
	}
	if dist["투자자B"] != 316730 {
		t.Errorf("투자자B = %d, want 316730", dist["투자자B"])
	}
	if dist["투자자C"] != 316635 {
		t.Errorf("투자자C = %d, want 316635", dist["투자자C"])
	}
}

func TestDistributeBranchTable(t *testing.T) {
	investors := map[string][]Investor{
		"고창농협": {
			{Name: "갑", Percentage: 0.6},
			{Name: "을", Percentage: 0.4},
		},
	}
	dist := Distribute(100000, "고창농협", investors)

	if dist[FeeLabel] != 5000 {
		t.Errorf("fee = %d", dist[FeeLabel])
	}
	if dist["갑"] != 57000 || dist["을"] != 38000 {
		t.Errorf("distribution = %v", dist)
	}
}

func TestLoadInvestors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "investors.json")
	content := `{"고창농협": [{"name": "갑", "percentage": 0.5}, {"name": "을", "percentage": 0.5}]}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	investors, err := LoadInvestors(path)
	if err != nil {
		t.Fatalf("LoadInvestors: %v", err)
	}
	if len(investors["고창농협"]) != 2 {
		t.Errorf("investors = %v", investors)
	}
	if investors["고창농협"][0].Percentage != 0.5 {
		t.Errorf("percentage = %v", investors["고창농협"][0].Percentage)
	}
}

func TestBuildRequestMessage(t *testing.T) {
	dist := Distribute(1000000, "고창농협", nil)
	msg := BuildRequestMessage(dist, 1000000, "고창농협", sampleNotice)

	if !strings.Contains(msg, "고창농협") {
		t.Error("message missing branch")
	}
	if !strings.Contains(msg, "09월01일") {
		t.Error("message should mirror the original notice date")
	}
	if !strings.Contains(msg, "061-2210-35**-**") {
		t.Error("message should mirror the original account")
	}
	if !strings.Contains(msg, "1,000,000") {
		t.Error("message missing formatted total")
	}
	if strings.Contains(msg, FeeLabel) {
		t.Error("fee line must not appear in the investor request")
	}
}

func TestFormatWon(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	}
	for _, tc := range cases {
		if got := formatWon(tc.in); got != tc.want {
			t.Errorf("formatWon(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
