package store

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/foxzi/campaign-console/internal/api"
	"github.com/foxzi/campaign-console/internal/csvimport"
	"github.com/foxzi/campaign-console/internal/models"
)

// ErrNoList is returned when list items are fetched before a list is chosen
var ErrNoList = errors.New("no list selected")

// ListItemAPI is the part of the backend the list items store needs
type ListItemAPI interface {
	FilterListItems(ctx context.Context, req api.ListItemFilterRequest) (*api.ListItemsResponse, error)
	UploadListItems(ctx context.Context, listID int64, items []models.ListItemDraft) (*api.UploadResponse, error)
	DeleteListItem(ctx context.Context, id int64) error
}

// ListItems holds the members of one list. Deletes are applied locally;
// imports refetch.
type ListItems struct {
	*Collection[models.ListItem, ListItemFilter]
	api      ListItemAPI
	importer *csvimport.Importer
}

func NewListItems(client ListItemAPI, limit int, logger *slog.Logger) *ListItems {
	fetch := func(ctx context.Context, q Query[ListItemFilter]) (*Page[models.ListItem], error) {
		if q.Filter.ListID == 0 {
			return nil, ErrNoList
		}
		resp, err := client.FilterListItems(ctx, api.ListItemFilterRequest{
			ListID: q.Filter.ListID,
			Page:   q.Page,
			Limit:  q.Limit,
		})
		if err != nil {
			return nil, err
		}
		return &Page[models.ListItem]{Items: resp.Items, Total: resp.Total, Page: resp.Page, Limit: resp.Limit}, nil
	}
	return &ListItems{
		Collection: NewCollection("list_items", limit, fetch, logger),
		api:        client,
		importer:   csvimport.NewImporter(client, logger),
	}
}

// Open switches to a list and loads its first page
func (s *ListItems) Open(ctx context.Context, listID int64) error {
	if err := s.SetFilter("list_id", strconv.FormatInt(listID, 10)); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Delete removes an item on the server, then drops it from the cached
// page and decrements the total.
func (s *ListItems) Delete(ctx context.Context, id int64) error {
	err := s.write(ctx, "delete", func(ctx context.Context) error {
		return s.api.DeleteListItem(ctx, id)
	})
	if err != nil {
		return err
	}
	// An id outside the cached page leaves total alone; the next fetch
	// brings the server's count.
	s.RemoveLocal(func(item models.ListItem) bool { return item.ID == id })
	return nil
}

// Import submits the valid rows of batch to the current list and refetches
// the current page. Errors are csvimport.ErrNoValidRows or a
// *csvimport.UploadError.
func (s *ListItems) Import(ctx context.Context, batch *csvimport.Batch) (*api.UploadResponse, error) {
	listID := s.Query().Filter.ListID
	if listID == 0 {
		return nil, ErrNoList
	}

	var resp *api.UploadResponse
	err := s.Mutate(ctx, "import", func(ctx context.Context) error {
		var err error
		resp, err = s.importer.Submit(ctx, listID, batch)
		return err
	})
	return resp, err
}
