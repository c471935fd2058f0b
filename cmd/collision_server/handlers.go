package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/fmstephe/collision-system/pkg/geom"
	"github.com/fmstephe/collision-system/pkg/loosetree"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// app serialises access to the tree. The index itself is single-threaded, so
// the HTTP layer carries the lock.
type app struct {
	mu   sync.Mutex
	tree *loosetree.Tree[string]
}

func newApp(tree *loosetree.Tree[string]) *app {
	return &app{tree: tree}
}

func (a *app) routes() http.Handler {
	mux := chi.NewMux()

	mux.Route("/api/v1", func(r chi.Router) {
		r.Post("/boxes", a.addBox)
		r.Delete("/boxes/{id}", a.removeBox)
		r.Get("/boxes/colliding", a.getColliding)
		r.Get("/stats", a.getStats)
	})

	return mux
}

type boxRequest struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// addBox inserts a rectangle into the index
// Request Method: POST
// Request Body: {"id": ..., "x": ..., "y": ..., "width": ..., "height": ...}
func (a *app) addBox(w http.ResponseWriter, r *http.Request) {
	var req boxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.sendError(w, http.StatusBadRequest, "request body is not a valid box")
		return
	}
	if req.ID == "" || req.Width < 0 || req.Height < 0 {
		a.sendError(w, http.StatusBadRequest, "a box needs an id and non-negative width and height")
		return
	}

	a.mu.Lock()
	err := a.tree.Add(req.ID, geom.NewRect(geom.Vec2{X: req.X, Y: req.Y}, req.Width, req.Height))
	a.mu.Unlock()
	if err != nil {
		a.sendError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a.sendJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

// removeBox removes the rectangle stored under the id path parameter
// Request Method: DELETE
func (a *app) removeBox(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a.mu.Lock()
	removed := a.tree.Remove(id)
	a.mu.Unlock()

	a.sendJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// getColliding lists the ids of every rectangle overlapping the query
// Request Method: GET
// Query Parameters: cx, cy, w, h - centre and size of the query rectangle
func (a *app) getColliding(w http.ResponseWriter, r *http.Request) {
	query, ok := a.parseQueryRect(w, r)
	if !ok {
		return
	}

	ids := []string{}
	a.mu.Lock()
	a.tree.GetColliding(query, &ids)
	a.mu.Unlock()

	a.sendJSON(w, http.StatusOK, ids)
}

// getStats reports the size and shape of the index
// Request Method: GET
func (a *app) getStats(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	stats := struct {
		Count    int        `json:"count"`
		Nodes    int        `json:"nodes"`
		Depth    int        `json:"depth"`
		WorldMin [2]float64 `json:"worldMin"`
		WorldMax [2]float64 `json:"worldMax"`
	}{
		Count: a.tree.Count(),
		Nodes: a.tree.NodeCount(),
		Depth: a.tree.Depth(),
	}
	world := a.tree.MaxBounds()
	a.mu.Unlock()
	stats.WorldMin = [2]float64{world.Min().X, world.Min().Y}
	stats.WorldMax = [2]float64{world.Max().X, world.Max().Y}

	a.sendJSON(w, http.StatusOK, stats)
}

func (a *app) parseQueryRect(w http.ResponseWriter, r *http.Request) (geom.Rect, bool) {
	values := map[string]float64{}
	for _, key := range []string{"cx", "cy", "w", "h"} {
		v, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
		if err != nil {
			a.sendError(w, http.StatusBadRequest, key+" is not a valid decimal/float")
			return geom.Rect{}, false
		}
		values[key] = v
	}
	if values["w"] < 0 || values["h"] < 0 {
		a.sendError(w, http.StatusBadRequest, "query width and height must be non-negative")
		return geom.Rect{}, false
	}
	return geom.NewRect(geom.Vec2{X: values["cx"], Y: values["cy"]}, values["w"], values["h"]), true
}

func (a *app) sendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		logrus.Errorf("error encoding response to JSON: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		logrus.Errorf("error sending JSON response to client: %v", err)
	}
}

func (a *app) sendError(w http.ResponseWriter, statusCode int, message string) {
	a.sendJSON(w, statusCode, map[string]string{"error": message})
}
