// Package interest parses fixed-format loan interest notifications and splits
// the amount among named investors by percentage. Deterministic arithmetic,
// independent from the news pipeline.
package interest

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// feeRate is the fixed handling fee taken before distribution.
const feeRate = 0.05

// FeeLabel is the distribution key holding the handling fee.
const FeeLabel = "수수료"

var (
	amountPattern    = regexp.MustCompile(`이자\s*:\s*([\d,]+)\s*원\s*예상`)
	altAmountPattern = regexp.MustCompile(`납입예상금액\s*:\s*([\d,]+)\s*원`)
	datePattern      = regexp.MustCompile(`(\d{2})월(\d{2})일`)
	accountPattern   = regexp.MustCompile(`(\d{3}-\d{4}-\d{2}\*\*-\*\*)`)
)

// knownBranches are matched in order; more specific names first.
var knownBranches = []string{"고창농협", "행안농협", "부안중앙농협", "농협"}

// Notice is the parsed interest notification.
type Notice struct {
	Amount int
	Branch string
}

// Investor is one named party with a share of the post-fee amount.
type Investor struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// ParseNotice extracts the expected interest amount and the bank branch from
// a notification message.
func ParseNotice(message string) (Notice, error) {
	amount, err := parseAmount(message)
	if err != nil {
		return Notice{}, err
	}

	branch := "알 수 없음"
	for _, b := range knownBranches {
		if strings.Contains(message, b) {
			branch = b
			break
		}
	}
	return Notice{Amount: amount, Branch: branch}, nil
}

func parseAmount(message string) (int, error) {
	for _, p := range []*regexp.Regexp{amountPattern, altAmountPattern} {
		m := p.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		amount, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			return 0, fmt.Errorf("parse amount %q: %w", m[1], err)
		}
		return amount, nil
	}
	return 0, fmt.Errorf("no interest amount found in message")
}

// LoadInvestors reads the per-branch investor tables from a JSON config file.
func LoadInvestors(path string) (map[string][]Investor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read investors config: %w", err)
	}
	var investors map[string][]Investor
	if err := json.Unmarshal(raw, &investors); err != nil {
		return nil, fmt.Errorf("decode investors config: %w", err)
	}
	return investors, nil
}

// defaultInvestors is the three-way split used when no branch table exists.
// The middle share absorbs the rounding remainder.
var defaultInvestors = []Investor{
	{Name: "투자자A", Percentage: 0.3333},
	{Name: "투자자B", Percentage: 0.3334},
	{Name: "투자자C", Percentage: 0.3333},
}

// Distribute splits amount: a fixed 5% fee, then the remainder among the
// branch's investors by percentage. Unknown branches use the default table.
// Amounts are truncated to whole won.
func Distribute(amount int, branch string, investors map[string][]Investor) map[string]int {
	table, ok := investors[branch]
	if !ok || len(table) == 0 {
		table = defaultInvestors
	}

	fee := int(float64(amount) * feeRate)
	remaining := amount - fee

	out := make(map[string]int, len(table)+1)
	out[FeeLabel] = fee
	for _, inv := range table {
		out[inv.Name] = int(float64(remaining) * inv.Percentage)
	}
	return out
}

// BuildRequestMessage renders the per-investor payment request in Telegram
// HTML, mirroring the original notification's date and account when present.
func BuildRequestMessage(distribution map[string]int, total int, branch, original string) string {
	now := time.Now()
	month, day := now.Format("01"), now.Format("02")
	if m := datePattern.FindStringSubmatch(original); m != nil {
		month, day = m[1], m[2]
	}
	account := "061-2210-35**-**"
	if m := accountPattern.FindStringSubmatch(original); m != nil {
		account = m[1]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s 이자 추가납입 요청 드립니다.</b>\n\n", branch)
	fmt.Fprintf(&b, "🏦 농협대출[납입도래](%s) %s월%s일(이자:%s원예상)\n", account, month, day, formatWon(total))
	fmt.Fprintf(&b, "▶관리점 : %s\n\n", branch)

	names := make([]string, 0, len(distribution))
	for name := range distribution {
		if name == FeeLabel {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		amount := distribution[name]
		fmt.Fprintf(&b, "✅ <b>%s</b>\n", name)
		fmt.Fprintf(&b, "• 이자 : %s원\n", formatWon(amount))
		fmt.Fprintf(&b, "• 추가납입요청 : %s원\n\n", formatWon(amount))
	}

	fmt.Fprintf(&b, "📊 <i>총 이자: %s원</i>\n", formatWon(total))
	return b.String()
}

// formatWon renders an amount with thousands separators.
func formatWon(amount int) string {
	s := strconv.Itoa(amount)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
