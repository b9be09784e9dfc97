package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"examscore/ml"
)

const (
	wsWriteWait   = 10 * time.Second
	wsMaxMessage  = 4096
	wsIdleTimeout = 5 * time.Minute
)

var allowedOrigins = []string{"*"}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// wsReply carries exactly one of Result or Failure.
type wsReply struct {
	OK      bool             `json:"ok"`
	Result  *predictResponse `json:"result,omitempty"`
	Failure *predictFailure  `json:"failure,omitempty"`
}

func RegisterWebSocketHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/ws/predict", handlePredictWS)
}

// handlePredictWS answers each JSON record with one reply. A message is fully
// scored and answered before the next one is read.
func handlePredictWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	requestID := GetRequestID(r.Context())
	conn.SetReadLimit(wsMaxMessage)
	for {
		conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Info("websocket closed", zap.String("request_id", requestID), zap.Error(err))
			}
			return
		}

		reply := wsReply{}
		record := ml.DefaultRecord()
		if err := json.Unmarshal(data, &record); err != nil {
			reply.Failure = &predictFailure{Status: http.StatusBadRequest, Kind: kindValidation, Message: "invalid message: " + err.Error()}
		} else if prediction, failure := runPrediction(r.Context(), record); failure != nil {
			reply.Failure = failure
		} else {
			result := newPredictResponse(prediction)
			reply.OK = true
			reply.Result = &result
		}

		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("websocket write failed", zap.String("request_id", requestID), zap.Error(err))
			return
		}
	}
}

func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
