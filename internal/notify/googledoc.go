package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/yingtu35/doombot/internal/config"
	"github.com/yingtu35/doombot/internal/logger"
	"github.com/yingtu35/doombot/internal/report"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

var ErrNoCredentials = errors.New("google service account key not set")

// GoogleDoc writes the Markdown report into a Google Doc. With a document ID
// the existing body is replaced; otherwise a new document is created on
// every run and shared with the configured users.
type GoogleDoc struct {
	cfg   config.GoogleDocConfig
	log   logger.Logger
	docs  *docs.Service
	drive *drive.Service
}

func NewGoogleDoc(ctx context.Context, cfg config.GoogleDocConfig, log logger.Logger) (*GoogleDoc, error) {
	creds, err := credentialsJSON(cfg.Credentials)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{
		option.WithCredentialsJSON(creds),
		option.WithScopes(docs.DocumentsScope, drive.DriveFileScope),
	}
	docsSvc, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create docs service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &GoogleDoc{cfg: cfg, log: log, docs: docsSvc, drive: driveSvc}, nil
}

// credentialsJSON accepts either the key JSON itself or a path to it.
func credentialsJSON(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrNoCredentials
	}
	if strings.HasPrefix(value, "{") {
		return []byte(value), nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return nil, fmt.Errorf("read service account key: %w", err)
	}
	return data, nil
}

func (g *GoogleDoc) Name() string { return "google_doc" }

func (g *GoogleDoc) Notify(ctx context.Context, rep *report.Report) error {
	docID := g.cfg.DocumentID
	if docID == "" {
		title := fmt.Sprintf("%s — %s", rep.Title, rep.FinishedAt.Format("2006-01-02"))
		created, err := g.docs.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("create google doc: %w", err)
		}
		docID = created.DocumentId
		g.log.Info("created google doc", logger.String("document_id", docID), logger.String("title", title))

		if err := g.share(ctx, docID); err != nil {
			return err
		}
	}

	doc, err := g.docs.Documents.Get(docID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get google doc %s: %w", docID, err)
	}

	requests := replaceBodyRequests(doc, report.Format(rep, report.StyleMarkdown))
	_, err = g.docs.Documents.BatchUpdate(docID, &docs.BatchUpdateDocumentRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update google doc %s: %w", docID, err)
	}
	g.log.Info("google doc updated", logger.String("url", "https://docs.google.com/document/d/"+docID))
	return nil
}

// replaceBodyRequests clears the document body and inserts text at the top.
// The body's final newline cannot be deleted, so the range stops before it.
func replaceBodyRequests(doc *docs.Document, text string) []*docs.Request {
	var requests []*docs.Request
	if end := bodyEndIndex(doc); end > 2 {
		requests = append(requests, &docs.Request{
			DeleteContentRange: &docs.DeleteContentRangeRequest{
				Range: &docs.Range{StartIndex: 1, EndIndex: end - 1},
			},
		})
	}
	requests = append(requests, &docs.Request{
		InsertText: &docs.InsertTextRequest{
			Location: &docs.Location{Index: 1},
			Text:     text,
		},
	})
	return requests
}

func bodyEndIndex(doc *docs.Document) int64 {
	if doc == nil || doc.Body == nil || len(doc.Body.Content) == 0 {
		return 0
	}
	return doc.Body.Content[len(doc.Body.Content)-1].EndIndex
}

func (g *GoogleDoc) share(ctx context.Context, docID string) error {
	for _, email := range g.cfg.ShareWith {
		perm := &drive.Permission{Type: "user", Role: "writer", EmailAddress: email}
		if _, err := g.drive.Permissions.Create(docID, perm).SendNotificationEmail(false).Context(ctx).Do(); err != nil {
			return fmt.Errorf("share google doc with %s: %w", email, err)
		}
	}
	return nil
}
