package export

import (
	"encoding/csv"
	"os"

	"leadhunt/internal/domain"
)

type CSV struct{}

func (CSV) Ext() string { return ".csv" }

func (CSV) Write(path string, leads []domain.Lead) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return err
	}
	for _, l := range leads {
		if err := w.Write(Row(l)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
