package comm

// Wire types shared between the hub, the API service and the job runner.

// ClientMessage is the single inbound socket payload. Exactly one of Token
// or Action is expected to be set; the remaining fields are action-specific.
type ClientMessage struct {
	Token  string `json:"token,omitempty"`
	Action string `json:"action,omitempty"`

	OpponentID int64 `json:"opponent_id,omitempty"`
	SessionID  int64 `json:"session_id,omitempty"`
	WordID     int64 `json:"word_id,omitempty"`
	SentenceID int64 `json:"sentence_id,omitempty"`
	IsLast     bool  `json:"isLast,omitempty"`

	// Set only on loopback messages originated by the job runner.
	Player1ID int64 `json:"player1_id,omitempty"`
	Player2ID int64 `json:"player2_id,omitempty"`
}

// Inbound action names dispatched by the hub.
const (
	ActionCreateGame      = "create_game"
	ActionAcceptGame      = "accept_game"
	ActionDeclineGame     = "decline_game"
	ActionAutoDeclineGame = "auto_decline_game"
	ActionCancelGame      = "cancel_pending_games"
	ActionCompleteGame    = "complete_game"
	ActionCorrectAnswer   = "correct_answer"
	ActionIncorrectAnswer = "in_correct_answer"
	ActionGameOver        = "game_over"
)

// Outbound event type discriminators.
const (
	TypeStatusUpdate     = "status-update"
	TypeGameInvite       = "game_invite"
	TypeGameWaiting      = "game_waiting"
	TypeGameAccepted     = "game_accepted"
	TypeGameDeclined     = "game_declined"
	TypeGameCancelled    = "game_cancelled"
	TypeGameAutoDeclined = "game_auto_declined"
	TypeGameCompleted    = "game_completed"
	TypeAnswerResult     = "answer_result"
)

// ErrorMessage is sent only to the connection whose action failed.
type ErrorMessage struct {
	Error string `json:"error"`
}

// AnswerResult carries both running scores after every recorded answer.
type AnswerResult struct {
	Type       string `json:"type"`
	SessionID  int64  `json:"session_id"`
	User1Score int64  `json:"user1Score"`
	User2Score int64  `json:"user2Score"`
	IsFinished bool   `json:"isFinished"`
}

// LoopbackMessage is published by the job runner on the hub loopback topic.
// The hub re-dispatches it through the same action switch as client traffic.
type LoopbackMessage struct {
	Message   string `json:"message"`
	Action    string `json:"action"`
	SessionID int64  `json:"session_id"`
	Player1ID int64  `json:"player1_id"`
	Player2ID int64  `json:"player2_id"`
}
