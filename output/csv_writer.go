package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"plansync/reconcile"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, changes reconcile.ChangeSet) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(reportHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, change := range changes.All() {
		if err := writer.Write(reportRow(change)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}
