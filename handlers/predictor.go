package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"rally-metrics-go/logging"
	"rally-metrics-go/models"
	"rally-metrics-go/services"
	"strings"
)

// PredictionErrorText is shown when the predictor backend fails
const PredictionErrorText = "Error generating prediction."

// PredictorHandler serves the head-to-head match predictor
type PredictorHandler struct {
	renderer
	playerService services.PlayerService
	teams         services.TeamService
	demo          bool
}

// NewPredictorHandler creates a new predictor handler
func NewPredictorHandler(templates *template.Template, playerService services.PlayerService, teams services.TeamService, demo bool) *PredictorHandler {
	return &PredictorHandler{
		renderer:      renderer{templates: templates, logger: logging.WithPrefix("PredictorHandler")},
		playerService: playerService,
		teams:         teams,
		demo:          demo,
	}
}

// Contender is a selected player shown beside the prediction
type Contender struct {
	models.Player
	Style models.TeamStyle
}

// PredictorPage is the data for predictor.html
type PredictorPage struct {
	Page
	Players    []models.Player
	PlayerA    string
	PlayerB    string
	A          *Contender
	B          *Contender
	Prediction string
	Error      string
}

// Predictor handles GET and POST /predictor. A prediction runs when playerA
// or playerB is submitted.
func (h *PredictorHandler) Predictor(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	req := models.PredictionRequest{
		PlayerA: strings.TrimSpace(r.Form.Get("playerA")),
		PlayerB: strings.TrimSpace(r.Form.Get("playerB")),
	}

	players, err := h.playerService.GetPlayers(r.Context(), models.PlayerQuery{})
	if err != nil {
		h.logger.Errorf("Failed to load players for predictor: %v", err)
	}
	players = services.SortByName(players)

	data := PredictorPage{
		Page:    newPage("Match Predictor", "predictor", h.demo),
		Players: players,
		PlayerA: req.PlayerA,
		PlayerB: req.PlayerB,
		A:       h.contender(players, req.PlayerA),
		B:       h.contender(players, req.PlayerB),
	}

	submitted := r.Method == http.MethodPost || r.Form.Has("playerA") || r.Form.Has("playerB")
	if submitted {
		if err := req.Validate(); err != nil {
			data.Error = capitalize(err.Error()) + "."
		} else if prediction, err := h.playerService.Predict(r.Context(), req.PlayerA, req.PlayerB); err != nil {
			h.logger.Errorf("Prediction %q vs %q failed: %v", req.PlayerA, req.PlayerB, err)
			data.Error = PredictionErrorText
		} else {
			data.Prediction = strings.TrimSpace(prediction)
		}
	}

	h.render(w, http.StatusOK, "predictor.html", data)
}

// PredictJSON handles POST /api/predict with a JSON PredictionRequest and
// replies with the plain-text prediction
func (h *PredictorHandler) PredictJSON(w http.ResponseWriter, r *http.Request) {
	var req models.PredictionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	prediction, err := h.playerService.Predict(r.Context(), strings.TrimSpace(req.PlayerA), strings.TrimSpace(req.PlayerB))
	if err != nil {
		h.logger.Errorf("Prediction %q vs %q failed: %v", req.PlayerA, req.PlayerB, err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": PredictionErrorText})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(strings.TrimSpace(prediction)))
}

func (h *PredictorHandler) contender(players []models.Player, name string) *Contender {
	if name == "" {
		return nil
	}
	p := services.FindPlayer(players, name)
	if p == nil {
		return nil
	}
	return &Contender{Player: *p, Style: h.teams.StyleFor(p.Team)}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
