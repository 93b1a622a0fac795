package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/StoryMap/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// CardInfo holds the data encoded into each passage card's QR code.
type CardInfo struct {
	Story   string   `json:"story"`
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Left    float64  `json:"left"`
	Top     float64  `json:"top"`
	Links   []string `json:"links,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Excerpt string   `json:"excerpt,omitempty"`
}

// Card layout constants: index-card style, 2 columns x 4 rows on A4 portrait.
const (
	cardMarginTop  = 12.0
	cardMarginLeft = 10.0
	cardWidth      = 95.0
	cardHeight     = 68.0
	cardCols       = 2
	cardRows       = 4
	cardsPerPage   = cardCols * cardRows
	cardQRSize     = 28.0
	cardPadding    = 3.0
	excerptRunes   = 120
)

// ExportCards generates a PDF of printable passage cards, one per passage,
// each with the passage name, its outgoing links, a text excerpt and a QR
// code encoding the card metadata as JSON.
func ExportCards(path string, story model.Story) error {
	cards := CollectCardInfos(story)
	if len(cards) == 0 {
		return ErrEmptyStory
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, card := range cards {
		if i%cardsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % cardsPerPage
		col := posOnPage % cardCols
		row := posOnPage / cardCols

		x := cardMarginLeft + float64(col)*cardWidth
		y := cardMarginTop + float64(row)*cardHeight

		if err := renderCard(pdf, x, y, card); err != nil {
			return fmt.Errorf("failed to render card for %q: %w", card.Name, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderCard draws a single card at the given position.
func renderCard(pdf *fpdf.Fpdf, x, y float64, info CardInfo) error {
	// Light border as a cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, cardWidth, cardHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal card info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := "qr_" + info.ID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + cardWidth - cardQRSize - cardPadding
	qrY := y + cardPadding
	pdf.ImageOptions(imgName, qrX, qrY, cardQRSize, cardQRSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + cardPadding
	textW := cardWidth - cardQRSize - 3*cardPadding

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+cardPadding)
	pdf.CellFormat(textW, 6, truncate(pdf, info.Name, textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+cardPadding+7)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("@ (%.0f, %.0f)", info.Left, info.Top), "", 1, "L", false, 0, "")

	if len(info.Tags) > 0 {
		pdf.SetXY(textX, y+cardPadding+11)
		pdf.CellFormat(textW, 3.5, truncate(pdf, "Tags: "+strings.Join(info.Tags, ", "), textW), "", 1, "L", false, 0, "")
	}

	if len(info.Links) > 0 {
		pdf.SetFont("Helvetica", "I", 7)
		pdf.SetTextColor(33, 100, 200)
		pdf.SetXY(textX, y+cardPadding+15)
		pdf.MultiCell(textW, 3.5, "-> "+strings.Join(info.Links, "\n-> "), "", "L", false)
	}

	if info.Excerpt != "" {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(textX, y+cardPadding+cardQRSize+3)
		pdf.MultiCell(cardWidth-2*cardPadding, 4, info.Excerpt, "", "L", false)
	}

	// Reset text color
	pdf.SetTextColor(0, 0, 0)

	return nil
}

// CollectCardInfos extracts card information from a story in passage order.
func CollectCardInfos(story model.Story) []CardInfo {
	var cards []CardInfo
	for _, p := range story.Passages {
		cards = append(cards, CardInfo{
			Story:   story.Name,
			ID:      p.ID,
			Name:    p.Name,
			Left:    p.Left,
			Top:     p.Top,
			Links:   p.Links,
			Tags:    p.Tags,
			Excerpt: excerpt(p.Text, excerptRunes),
		})
	}
	return cards
}

// excerpt returns the first n runes of text on a single line.
func excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
