// Package sandbox is an in-memory emulator of the Satispay Online API. It
// implements the documented REST contract (users, charges, refunds, bearer
// authentication, provider error bodies) and backs hermetic tests as well as
// the satispay-mock binary.
package sandbox

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	statusRequired = "REQUIRED"
	statusFailure  = "FAILURE"

	detailDeclinedByPayer = "DECLINED_BY_PAYER"

	wltContext = "wally-services"
)

type user struct {
	ID          string `json:"id"`
	UUID        string `json:"uuid"`
	PhoneNumber string `json:"phone_number"`
}

type charge struct {
	ID            string            `json:"id"`
	Currency      string            `json:"currency"`
	Amount        int64             `json:"amount"`
	Description   string            `json:"description"`
	Status        string            `json:"status"`
	StatusDetail  string            `json:"status_detail,omitempty"`
	UserID        string            `json:"user_id"`
	UserShortName string            `json:"user_short_name"`
	Metadata      map[string]string `json:"metadata"`
	Paid          bool              `json:"paid"`
	ExpireDate    string            `json:"expire_date"`
	ChargeDate    string            `json:"charge_date"`
	CallbackURL   string            `json:"callback_url"`
	RefundAmount  int64             `json:"refund_amount"`
}

type refund struct {
	ID          string            `json:"id"`
	ChargeID    string            `json:"charge_id"`
	Description string            `json:"description"`
	Currency    string            `json:"currency"`
	Amount      int64             `json:"amount"`
	Created     string            `json:"created"`
	Reason      string            `json:"reason,omitempty"`
	Metadata    map[string]string `json:"metadata"`
}

// Server holds the emulated shop state. All mutations happen under one lock;
// the emulator trades throughput for predictable test behavior.
type Server struct {
	bearer string

	mu           sync.Mutex
	users        map[string]*user
	userOrder    []string
	charges      map[string]*charge
	chargeOrder  []string
	refunds      map[string]*refund
	refundOrder  []string
	usersByPhone map[string]string
}

// New creates a Server that accepts the given security bearer.
func New(bearer string) *Server {
	return &Server{
		bearer:       bearer,
		users:        map[string]*user{},
		charges:      map[string]*charge{},
		refunds:      map[string]*refund{},
		usersByPhone: map[string]string{},
	}
}

// Engine builds the gin engine serving the provider contract.
func (s *Server) Engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.authenticate)

	engine.GET("/wally-services/protocol/authenticated", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"authenticated": true})
	})

	v1 := engine.Group("/online/v1")
	v1.POST("/users", s.createUser)
	v1.GET("/users/:user_id", s.getUser)
	v1.GET("/users", s.listUsers)
	v1.POST("/charges", s.createCharge)
	v1.GET("/charges/:charge_id", s.getCharge)
	v1.GET("/charges", s.listCharges)
	v1.PUT("/charges/:charge_id", s.updateCharge)
	v1.POST("/refunds", s.createRefund)
	v1.GET("/refunds/:refund_id", s.getRefund)
	v1.GET("/refunds", s.listRefunds)
	v1.PUT("/refunds/:refund_id", s.updateRefund)

	return engine
}

// providerError writes the {code, message, wlt} body every non-2xx response
// carries, except 500 which stays opaque.
func providerError(c *gin.Context, status, code int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
		"wlt":     wltContext,
	})
}

func (s *Server) authenticate(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+s.bearer {
		providerError(c, http.StatusUnauthorized, 36, "Try to access without authentication")
		return
	}
	c.Next()
}

func (s *Server) createUser(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PhoneNumber == "" {
		providerError(c, http.StatusBadRequest, 21, "phone_number is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Registering the same phone twice returns the existing user.
	if id, ok := s.usersByPhone[req.PhoneNumber]; ok {
		c.JSON(http.StatusOK, s.users[id])
		return
	}

	u := &user{
		ID:          uuid.NewString(),
		UUID:        uuid.NewString(),
		PhoneNumber: req.PhoneNumber,
	}
	s.users[u.ID] = u
	s.userOrder = append(s.userOrder, u.ID)
	s.usersByPhone[u.PhoneNumber] = u.ID

	c.JSON(http.StatusOK, u)
}

func (s *Server) getUser(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[c.Param("user_id")]
	if !ok {
		providerError(c, http.StatusNotFound, 41, "Unable to find the requested consumer")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) listUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, hasMore, ok := paginate(c, s.userOrder, 0)
	if !ok {
		return
	}
	page := make([]*user, 0, len(ids))
	for _, id := range ids {
		page = append(page, s.users[id])
	}
	c.JSON(http.StatusOK, gin.H{"has_more": hasMore, "list": page})
}

func (s *Server) createCharge(c *gin.Context) {
	var req struct {
		UserID      string            `json:"user_id"`
		Currency    string            `json:"currency"`
		Amount      int64             `json:"amount"`
		Description string            `json:"description"`
		ExpireIn    int               `json:"expire_in"`
		Metadata    map[string]string `json:"metadata"`
		CallbackURL string            `json:"callback_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" || req.Currency == "" {
		providerError(c, http.StatusBadRequest, 23, "user_id and currency are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[req.UserID]
	if !ok {
		providerError(c, http.StatusBadRequest, 27, "Unable to find the requested consumer")
		return
	}

	expireIn := req.ExpireIn
	if expireIn == 0 {
		expireIn = 900
	}
	now := time.Now().UTC()
	ch := &charge{
		ID:            uuid.NewString(),
		Currency:      req.Currency,
		Amount:        req.Amount,
		Description:   req.Description,
		Status:        statusRequired,
		UserID:        u.ID,
		UserShortName: shortName(u.PhoneNumber),
		Metadata:      req.Metadata,
		ExpireDate:    now.Add(time.Duration(expireIn) * time.Second).Format(time.RFC3339),
		ChargeDate:    now.Format(time.RFC3339),
		CallbackURL:   req.CallbackURL,
	}
	s.charges[ch.ID] = ch
	s.chargeOrder = append(s.chargeOrder, ch.ID)

	c.JSON(http.StatusOK, ch)
}

func (s *Server) getCharge(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.charges[c.Param("charge_id")]
	if !ok {
		providerError(c, http.StatusNotFound, 42, "Unable to find the requested charge")
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (s *Server) listCharges(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, hasMore, ok := paginate(c, s.chargeOrder, 100)
	if !ok {
		return
	}
	page := make([]*charge, 0, len(ids))
	for _, id := range ids {
		page = append(page, s.charges[id])
	}
	c.JSON(http.StatusOK, gin.H{"has_more": hasMore, "list": page})
}

func (s *Server) updateCharge(c *gin.Context) {
	var req struct {
		Description string            `json:"description"`
		Metadata    map[string]string `json:"metadata"`
		ChargeState string            `json:"charge_state"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		providerError(c, http.StatusBadRequest, 23, "malformed request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.charges[c.Param("charge_id")]
	if !ok {
		providerError(c, http.StatusNotFound, 42, "Unable to find the requested charge")
		return
	}

	if req.Description != "" {
		ch.Description = req.Description
	}
	if req.Metadata != nil {
		if ch.Metadata == nil {
			ch.Metadata = map[string]string{}
		}
		for k, v := range req.Metadata {
			ch.Metadata[k] = v
		}
	}
	if req.ChargeState != "" {
		if req.ChargeState != "CANCELED" {
			providerError(c, http.StatusBadRequest, 23, "charge_state only accepts CANCELED")
			return
		}
		if ch.Status != statusRequired {
			providerError(c, http.StatusBadRequest, 23, "only a REQUIRED charge can be canceled")
			return
		}
		ch.Status = statusFailure
		ch.StatusDetail = detailDeclinedByPayer
	}

	c.JSON(http.StatusOK, ch)
}

func (s *Server) createRefund(c *gin.Context) {
	var req struct {
		ChargeID    string            `json:"charge_id"`
		Currency    string            `json:"currency"`
		Amount      int64             `json:"amount"`
		Description string            `json:"description"`
		Reason      string            `json:"reason"`
		Metadata    map[string]string `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ChargeID == "" || req.Currency == "" || req.Amount < 0 {
		providerError(c, http.StatusBadRequest, 23, "charge_id, currency and a non-negative amount are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.charges[req.ChargeID]
	if !ok {
		providerError(c, http.StatusBadRequest, 42, "Unable to find the requested charge")
		return
	}

	r := &refund{
		ID:          uuid.NewString(),
		ChargeID:    ch.ID,
		Description: req.Description,
		Currency:    req.Currency,
		Amount:      req.Amount,
		Created:     time.Now().UTC().Format(time.RFC3339),
		Reason:      req.Reason,
		Metadata:    req.Metadata,
	}
	s.refunds[r.ID] = r
	s.refundOrder = append(s.refundOrder, r.ID)
	ch.RefundAmount += r.Amount

	c.JSON(http.StatusOK, r)
}

func (s *Server) getRefund(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.refunds[c.Param("refund_id")]
	if !ok {
		providerError(c, http.StatusNotFound, 43, "Unable to find the requested refund")
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) listRefunds(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, hasMore, ok := paginate(c, s.refundOrder, 0)
	if !ok {
		return
	}
	page := make([]*refund, 0, len(ids))
	for _, id := range ids {
		page = append(page, s.refunds[id])
	}
	c.JSON(http.StatusOK, gin.H{"has_more": hasMore, "list": page})
}

func (s *Server) updateRefund(c *gin.Context) {
	var req struct {
		Metadata map[string]string `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Metadata == nil {
		providerError(c, http.StatusBadRequest, 23, "metadata is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.refunds[c.Param("refund_id")]
	if !ok {
		providerError(c, http.StatusNotFound, 43, "Unable to find the requested refund")
		return
	}
	if r.Metadata == nil {
		r.Metadata = map[string]string{}
	}
	for k, v := range req.Metadata {
		r.Metadata[k] = v
	}

	c.JSON(http.StatusOK, r)
}

// paginate applies limit/starting_after/ending_before to an insertion-ordered
// id slice. It writes the provider error itself and reports ok=false when the
// query parameters are rejected.
func paginate(c *gin.Context, order []string, maxLimit int) (ids []string, hasMore, ok bool) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || (maxLimit > 0 && n > maxLimit) {
			providerError(c, http.StatusBadRequest, 25, "limit is out of range")
			return nil, false, false
		}
		limit = n
	}

	start := 0
	end := len(order)
	if after := c.Query("starting_after"); after != "" {
		for i, id := range order {
			if id == after {
				start = i + 1
				break
			}
		}
	}
	if before := c.Query("ending_before"); before != "" {
		for i, id := range order {
			if id == before {
				end = i
				break
			}
		}
	}
	if start > end {
		start = end
	}

	window := order[start:end]
	if len(window) > limit {
		return window[:limit], true, true
	}
	return window, false, true
}

func shortName(phoneNumber string) string {
	if len(phoneNumber) <= 3 {
		return phoneNumber
	}
	return "***" + phoneNumber[len(phoneNumber)-3:]
}
