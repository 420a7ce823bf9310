package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Dosada05/championship/storage"
)

// ArchiveService stores the final snapshot of a completed tournament.
type ArchiveService interface {
	ArchiveTournament(ctx context.Context, overview *TournamentOverview) (string, error)
}

type archiveService struct {
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewArchiveService(uploader storage.FileUploader, logger *slog.Logger) ArchiveService {
	return &archiveService{uploader: uploader, logger: logger}
}

// ArchiveKey builds the object key of a snapshot. Every archive gets a fresh key, so a
// tournament completed again after a reset keeps its previous snapshots.
func ArchiveKey(slug string, id uuid.UUID) string {
	return fmt.Sprintf("tournaments/%s/%s.json", slug, id.String())
}

func (s *archiveService) ArchiveTournament(ctx context.Context, overview *TournamentOverview) (string, error) {
	if overview == nil || overview.Tournament == nil {
		return "", fmt.Errorf("%w: empty overview", ErrValidationFailed)
	}
	body, err := json.MarshalIndent(overview, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode tournament %d snapshot: %w", overview.Tournament.ID, err)
	}

	key := ArchiveKey(overview.Tournament.Slug, uuid.New())
	res, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	s.logger.Debug("snapshot uploaded", slog.String("key", res.Key), slog.String("etag", res.ETag))
	if res.Location != "" {
		return res.Location, nil
	}
	return res.Key, nil
}
