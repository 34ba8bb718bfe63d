// Package export renders the user directory and store contents as files
// an administrator can download.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"convertbot/internal/models"
)

const usersSheet = "Users"

// WriteUsersXLSX writes a workbook with a bold header row and one row per user
func WriteUsersXLSX(w io.Writer, users []models.User) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", usersSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := []interface{}{"User ID", "Full name", "Username"}
	if err := f.SetSheetRow(usersSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(usersSheet, "A1", "C1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, u := range users {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		handle := ""
		if u.Username != "" {
			handle = "@" + u.Username
		}
		row := []interface{}{u.ID, u.FullName, handle}
		if err := f.SetSheetRow(usersSheet, cell, &row); err != nil {
			return fmt.Errorf("write user %d: %w", u.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
