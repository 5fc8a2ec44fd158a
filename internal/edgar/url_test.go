package edgar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessionFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "no-dash folder",
			url:  "https://www.sec.gov/Archives/edgar/data/320193/000032019324000069/aapl-20240330.htm",
			want: "000032019324000069",
		},
		{
			name: "dashed folder",
			url:  "https://www.sec.gov/Archives/edgar/data/320193/0000320193-24-000069/aapl-20240330.htm",
			want: "000032019324000069",
		},
		{
			name: "not an archive url",
			url:  "https://example.com/filing.htm",
			want: "",
		},
		{
			name: "empty",
			url:  "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AccessionFromURL(tt.url))
		})
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "passthrough",
			url:  "https://www.sec.gov/Archives/edgar/data/1/2/doc.htm",
			want: "https://www.sec.gov/Archives/edgar/data/1/2/doc.htm",
		},
		{
			name: "trims whitespace",
			url:  "  https://www.sec.gov/doc.htm  ",
			want: "https://www.sec.gov/doc.htm",
		},
		{
			name: "nan placeholder",
			url:  "NaN",
			want: "",
		},
		{
			name: "empty",
			url:  "",
			want: "",
		},
		{
			name: "ix viewer unwrapped",
			url:  "https://www.sec.gov/ix?doc=/Archives/edgar/data/1/2/doc.htm",
			want: "https://www.sec.gov/Archives/edgar/data/1/2/doc.htm",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalURL(tt.url))
		})
	}
}

func TestPadCIK(t *testing.T) {
	assert.Equal(t, "0000320193", PadCIK("320193"))
	assert.Equal(t, "0000320193", PadCIK("320193.0")) // float artifact digits kept
	assert.Equal(t, "0001234567", PadCIK("1234567"))
	assert.Equal(t, "1234567890", PadCIK("1234567890"))
	assert.Equal(t, "0000000000", PadCIK(""))
}

func TestTxtCandidates(t *testing.T) {
	got := TxtCandidates("https://www.sec.gov/Archives/edgar/data/320193/000032019324000069/aapl.htm")
	assert.Equal(t, []string{
		"https://www.sec.gov/Archives/edgar/data/320193/000032019324000069/0000320193-24-000069.txt",
		"https://www.sec.gov/Archives/edgar/data/320193/000032019324000069/000032019324000069.txt",
	}, got)

	assert.Nil(t, TxtCandidates("https://example.com/doc.htm"))
}

func TestTxtCandidates_DashedFolder(t *testing.T) {
	got := TxtCandidates("https://www.sec.gov/Archives/edgar/data/320193/0000320193-24-000069/aapl.htm")
	assert.Equal(t, []string{
		"https://www.sec.gov/Archives/edgar/data/320193/000032019324000069/0000320193-24-000069.txt",
		"https://www.sec.gov/Archives/edgar/data/320193/000032019324000069/000032019324000069.txt",
	}, got)
}

func TestIsAnnualForm(t *testing.T) {
	for _, form := range []string{"10-K", "10-K/A", "10-KT", "10-KSB", "20-F", "40-F", "10-K405"} {
		assert.True(t, IsAnnualForm(form), form)
	}
	for _, form := range []string{"10-Q", "10-Q/A", "8-K", "S-1", ""} {
		assert.False(t, IsAnnualForm(form), form)
	}
}

func TestNormForm(t *testing.T) {
	assert.Equal(t, "10K", NormForm("10-k"))
	assert.Equal(t, "10KSB40/A", NormForm("10-KSB40/A"))
}
