package api

import (
	"net/http"

	"github.com/iskkyy/LNFRP/internal/model"
	"github.com/iskkyy/LNFRP/internal/photos"
)

// ItemsHandler handles item CRUD and photo endpoints.
type ItemsHandler struct {
	Store  ItemStore
	Photos photos.Store
}

// itemRequest is the body of POST and PUT /items.
type itemRequest struct {
	ItemName    string `json:"item_name"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DateFound   string `json:"date_found"`
}

func (req itemRequest) fields() (model.ItemFields, error) {
	dateFound, err := model.ParseDateFound(req.DateFound)
	if err != nil {
		return model.ItemFields{}, err
	}
	return model.ItemFields{
		ItemName:    req.ItemName,
		Category:    req.Category,
		Location:    req.Location,
		Description: req.Description,
		Status:      req.Status,
		DateFound:   dateFound,
	}, nil
}

// List handles GET /items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListItems(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "", "list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid item id")
		return
	}

	item, err := h.Store.GetItem(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "item not found", "get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	f, err := req.fields()
	if err == nil {
		err = f.NormalizeForCreate()
	}
	if err != nil {
		writeStoreError(w, r, err, "", "add item")
		return
	}

	item, err := h.Store.CreateItem(r.Context(), f)
	if err != nil {
		writeStoreError(w, r, err, "", "add item")
		return
	}

	jsonResponse(w, http.StatusCreated, messageResponse{Message: "Item added", ID: item.ID})
}

// Update handles PUT /items/{id}. Every mutable column is overwritten.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid item id")
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	f, err := req.fields()
	if err == nil {
		err = f.NormalizeForUpdate()
	}
	if err != nil {
		// An unknown item is reported before the body's shortcomings.
		if _, gerr := h.Store.GetItem(r.Context(), id); gerr != nil {
			writeStoreError(w, r, gerr, "item not found", "update item")
			return
		}
		writeStoreError(w, r, err, "", "update item")
		return
	}

	if err := h.Store.UpdateItem(r.Context(), id, f); err != nil {
		writeStoreError(w, r, err, "item not found", "update item")
		return
	}

	jsonResponse(w, http.StatusOK, messageResponse{Message: "Update successful"})
}

// Delete handles DELETE /items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid item id")
		return
	}

	photoKey, err := h.Store.DeleteItem(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "item not found", "delete item")
		return
	}
	h.discardPhoto(r, photoKey)

	jsonResponse(w, http.StatusOK, messageResponse{Message: "Item deleted"})
}
