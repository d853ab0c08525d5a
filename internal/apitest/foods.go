package apitest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fastorder/storefront/internal/enum"
	"github.com/fastorder/storefront/internal/model"
)

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listFoods(w http.ResponseWriter, r *http.Request) {
	var categoryID int64
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
			return
		}
		categoryID = id
	}

	s.mu.Lock()
	out := make([]model.Food, 0, len(s.foodIDs))
	for _, id := range s.foodIDs {
		f := s.foods[id]
		if categoryID != 0 && f.CategoryID != categoryID {
			continue
		}
		out = append(out, *f)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

type foodRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImgURL      string          `json:"img_url"`
	IsAvailable bool            `json:"is_available"`
	CategoryID  int64           `json:"category_id"`
}

func (s *Server) createFood(w http.ResponseWriter, r *http.Request) {
	var req foodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.Price.LessThanOrEqual(decimal.Zero) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and a positive price are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := model.Food{
		ID:          s.id(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImgURL:      req.ImgURL,
		IsAvailable: req.IsAvailable,
		CategoryID:  req.CategoryID,
	}
	for _, c := range s.categories {
		if c.ID == req.CategoryID {
			f.CategoryName = c.Name
		}
	}
	s.foods[f.ID] = &f
	s.foodIDs = append(s.foodIDs, f.ID)

	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) updateFood(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid food id"})
		return
	}

	var req foodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.foods[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "food not found"})
		return
	}

	f.Name = req.Name
	f.Description = req.Description
	f.Price = req.Price
	f.ImgURL = req.ImgURL
	f.IsAvailable = req.IsAvailable
	f.CategoryID = req.CategoryID
	f.CategoryName = ""
	for _, c := range s.categories {
		if c.ID == req.CategoryID {
			f.CategoryName = c.Name
		}
	}

	writeJSON(w, http.StatusOK, *f)
}

func (s *Server) deleteFood(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid food id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.foods[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "food not found"})
		return
	}
	delete(s.foods, id)
	for i, fid := range s.foodIDs {
		if fid == id {
			s.foodIDs = append(s.foodIDs[:i], s.foodIDs[i+1:]...)
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "food deleted"})
}

// confirmedFoods aggregates ordered quantities per food across orders that
// are still headed for the kitchen.
func (s *Server) confirmedFoods(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	totals := make(map[int64]*model.ConfirmedFood)
	order := make([]int64, 0)
	for _, oid := range s.orderIDs {
		rec := s.orders[oid]
		if rec.Status != enum.OrderStatusPending && rec.Status != enum.OrderStatusConfirmed {
			continue
		}
		for _, item := range rec.Items {
			agg, ok := totals[item.FoodID]
			if !ok {
				agg = &model.ConfirmedFood{FoodID: item.FoodID, Name: item.Name}
				totals[item.FoodID] = agg
				order = append(order, item.FoodID)
			}
			agg.TotalQuantity += item.Quantity
		}
	}
	out := make([]model.ConfirmedFood, 0, len(order))
	for _, fid := range order {
		out = append(out, *totals[fid])
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}
