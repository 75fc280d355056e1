package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Surya-Mathivanan/Redeem-app/internal/model"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"gorm.io/gorm"
)

// SheetSyncService appends misuse log entries to a Google Sheet so the
// audit trail can be reviewed outside the application. The sheet is
// append-only, matching the log itself.
type SheetSyncService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetSyncService(enableSync bool, credentialPath, spreadsheetID, sheetName string) (*SheetSyncService, error) {
	if !enableSync {
		return nil, nil
	}

	ctx := context.Background()

	b, err := os.ReadFile(credentialPath)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %v", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, err
	}

	return &SheetSyncService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// SyncEntry appends one log entry to the sheet. Safe to call on a nil
// receiver so callers don't have to guard on whether sync is enabled.
func (s *SheetSyncService) SyncEntry(entry *model.MisuseLog) error {
	if s == nil {
		return nil
	}

	values := [][]interface{}{{
		entry.ID,
		entry.UserID,
		entry.ActionType,
		entry.Details,
		entry.CreatedAt.Format(time.RFC3339),
	}}

	_, err := s.service.Spreadsheets.Values.Append(
		s.spreadsheetID,
		s.sheetName+"!A2:E",
		&sheets.ValueRange{Values: values},
	).ValueInputOption("USER_ENTERED").Do()
	if err != nil {
		log.Printf("failed to sync misuse log entry %d to sheet: %v", entry.ID, err)
		return err
	}

	return nil
}

// BatchSync appends every misuse log entry in the store to the sheet,
// oldest first. Intended for one-off backfills of a fresh sheet.
func (s *SheetSyncService) BatchSync(db *gorm.DB) error {
	if s == nil {
		return nil
	}

	var entries []model.MisuseLog
	if err := db.Order("created_at ASC").Find(&entries).Error; err != nil {
		return err
	}

	var values [][]interface{}
	for _, entry := range entries {
		values = append(values, []interface{}{
			entry.ID,
			entry.UserID,
			entry.ActionType,
			entry.Details,
			entry.CreatedAt.Format(time.RFC3339),
		})
	}
	if len(values) == 0 {
		return nil
	}

	_, err := s.service.Spreadsheets.Values.Append(
		s.spreadsheetID,
		s.sheetName+"!A2:E",
		&sheets.ValueRange{Values: values},
	).ValueInputOption("USER_ENTERED").Do()
	if err != nil {
		log.Printf("failed to batch sync misuse logs: %v", err)
		return err
	}

	log.Printf("synced %d misuse log entries to sheet", len(values))
	return nil
}
