package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rnavarro/nike-catalog-scraper/internal/analytics"
	"github.com/rnavarro/nike-catalog-scraper/internal/models"
)

// Columns is the catalog export header, in output order.
var Columns = []string{
	"Product_URL",
	"Product_Image_URL",
	"Product_Tagging",
	"Product_Name",
	"Product_Description",
	"Original_Price",
	"Discount_Price",
	"Sizes_Available",
	"Vouchers",
	"Available_Colors",
	"Color_Shown",
	"Style_Code",
	"Rating_Score",
	"Review_Count",
}

// utf8BOM makes Excel open the files with the peso sign intact.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCatalog writes the full catalog export. The header row is written
// even when items is empty.
func WriteCatalog(path string, items []*models.Item) error {
	rows := make([][]string, 0, len(items)+1)
	rows = append(rows, Columns)
	for _, item := range items {
		rows = append(rows, itemRow(item))
	}
	return writeAtomic(path, rows)
}

// WriteRanked writes the rating leaderboard with a leading Rank column.
func WriteRanked(path string, ranked []analytics.RankedItem) error {
	header := append([]string{"Rank"}, Columns...)
	rows := make([][]string, 0, len(ranked)+1)
	rows = append(rows, header)
	for _, r := range ranked {
		rows = append(rows, append([]string{strconv.Itoa(r.Rank)}, itemRow(r.Item)...))
	}
	return writeAtomic(path, rows)
}

// RemoveCheckpoint deletes the checkpoint file left by an interrupted run.
// A missing file is not an error.
func RemoveCheckpoint(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing checkpoint: %w", err)
	}
	return nil
}

func itemRow(item *models.Item) []string {
	return []string{
		item.URL,
		item.ImageURL,
		item.Tagging,
		item.Name,
		item.Description,
		item.OriginalPrice,
		item.DiscountPrice,
		item.Sizes,
		item.Vouchers,
		item.ColorCount,
		item.ColorShown,
		item.StyleCode,
		item.Rating,
		item.ReviewCount,
	}
}

func writeAtomic(path string, rows [][]string) error {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("encoding csv: %w", err)
	}

	// Write to temp file first for atomicity
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmpFile, err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
