package web

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ddj/domain/apperrors"
	"ddj/domain/entities"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func roundJSON(r entities.RoundInfo) gin.H {
	return gin.H{
		"roundId":        r.RoundID,
		"startMs":        r.StartMs,
		"endMs":          r.EndMs,
		"closeAtMs":      r.CloseAtMs,
		"betsOpen":       r.BetsOpen,
		"secondsLeft":    r.SecondsLeft,
		"secondsToClose": r.SecondsToClose,
	}
}

func paramsJSON(p entities.RoundParams) gin.H {
	return gin.H{
		"roundSeconds": p.RoundSeconds,
		"closeBetsAt":  p.CloseBetsAt,
		"anchorMs":     p.AnchorMs,
	}
}

func playerJSON(p *entities.Player) gin.H {
	return gin.H{
		"id":        p.ID,
		"username":  p.Username,
		"balance":   p.Balance,
		"status":    p.Status,
		"createdAt": p.CreatedAt,
	}
}

func betJSON(b *entities.Bet) gin.H {
	out := gin.H{
		"id":      b.ID,
		"roundId": b.RoundID,
		"nums":    b.Nums,
		"chance":  b.Chance,
		"amount":  b.Amount,
		"settled": b.Settled,
		"payout":  b.Payout,
		"choice":  b.ChoiceKey(),
	}
	if b.Category != nil {
		out["category"] = *b.Category
	}
	return out
}

func (s *Server) handleRound(c *gin.Context) {
	round := s.clock.RoundInfo(s.now())
	body := roundJSON(round)
	body["ok"] = true
	body["params"] = paramsJSON(s.clock.Params())
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleRoundResult(c *gin.Context) {
	roundID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid round id"))
		return
	}

	result, svcErr := s.settlement.GetRoundResult(c.Request.Context(), roundID)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"roundId":   result.RoundID,
		"main":      result.Main,
		"chance":    result.Chance,
		"settledAt": result.SettledAt,
	})
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 20, 100)
	players, err := s.players.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(players))
	for _, p := range players {
		out = append(out, playerJSON(p))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "players": out})
}

type signupRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid request body"))
		return
	}

	player, err := s.players.Signup(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "player": playerJSON(player)})
}

type redeemRequest struct {
	PlayerID int64  `json:"playerId"`
	Code     string `json:"code"`
}

func (s *Server) handleRedeem(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid request body"))
		return
	}

	giftCode, err := s.redemption.Redeem(c.Request.Context(), req.PlayerID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "value": giftCode.Value})
}

func (s *Server) handleGetPlayer(c *gin.Context) {
	playerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid player id"))
		return
	}

	player, svcErr := s.players.GetPlayer(c.Request.Context(), playerID)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "player": playerJSON(player)})
}

func (s *Server) handleLedger(c *gin.Context) {
	playerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid player id"))
		return
	}
	limit := parseLimit(c.Query("limit"), 50, 200)

	entries, svcErr := s.players.GetLedger(c.Request.Context(), playerID, limit)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"id":        e.ID,
			"kind":      e.Kind,
			"amount":    e.Amount,
			"meta":      e.Meta,
			"createdAt": e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "ledger": out})
}

type betRequest struct {
	PlayerID int64 `json:"playerId"`
	Nums     []int `json:"nums"`
	Chance   int   `json:"chance"`
	Amount   int64 `json:"amount"`
}

func (s *Server) handlePlaceBet(c *gin.Context) {
	var req betRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid request body"))
		return
	}

	bet, err := s.betting.PlaceBet(c.Request.Context(), req.PlayerID, req.Nums, req.Chance, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bet": betJSON(bet)})
}

func (s *Server) handleGetConfig(c *gin.Context) {
	body := paramsJSON(s.clock.Params())
	body["ok"] = true
	c.JSON(http.StatusOK, body)
}

type updateConfigRequest struct {
	RoundSeconds *int64   `json:"roundSeconds"`
	CloseBetsAt  *int64   `json:"closeBetsAt"`
	AnchorMs     *float64 `json:"anchorMs"`
}

func (s *Server) handleUpdateConfig(c *gin.Context) {
	var req updateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid request body"))
		return
	}

	var anchor *int64
	if req.AnchorMs != nil {
		ms := int64(*req.AnchorMs)
		if math.IsNaN(*req.AnchorMs) || math.IsInf(*req.AnchorMs, 0) {
			ms = s.now().UnixMilli()
		}
		anchor = &ms
	}

	params := s.clock.UpdateParams(req.RoundSeconds, req.CloseBetsAt, anchor)
	body := paramsJSON(params)
	body["ok"] = true
	c.JSON(http.StatusOK, body)
}

type createGiftCodesRequest struct {
	Count     int        `json:"count"`
	Value     int64      `json:"value"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (s *Server) handleCreateGiftCodes(c *gin.Context) {
	var req createGiftCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid request body"))
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	if req.Count < 1 || req.Count > 100 {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "count must be in range 1..100"))
		return
	}

	codes := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		code, _, err := s.giftCodes.CreateCode(c.Request.Context(), req.Value, req.ExpiresAt)
		if err != nil {
			respondError(c, err)
			return
		}
		codes = append(codes, code)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "codes": codes, "value": req.Value})
}

type settleRequest struct {
	RoundID *int64 `json:"roundId"`
}

func (s *Server) handleSettle(c *gin.Context) {
	var req settleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid request body"))
			return
		}
	}

	roundID := s.clock.RoundInfo(s.now()).RoundID - 1
	if req.RoundID != nil {
		roundID = *req.RoundID
	}

	summary, err := s.settlement.SettleRound(c.Request.Context(), roundID)
	if err != nil {
		respondError(c, err)
		return
	}

	body := gin.H{
		"ok":             true,
		"roundId":        summary.RoundID,
		"alreadySettled": summary.AlreadySettled,
		"outcome": gin.H{
			"main":   summary.Outcome.Main,
			"chance": summary.Outcome.Chance,
		},
	}
	if !summary.AlreadySettled {
		body["pot"] = summary.Pot
		body["carryIn"] = summary.CarryIn
		body["adminTake"] = summary.AdminTake
		body["carryOut"] = summary.CarryOut
		body["totalPaid"] = summary.TotalPaid
		body["winners"] = summary.Winners
		body["bets"] = summary.Bets
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleBank(c *gin.Context) {
	bank, entries, err := s.bank.GetBank(c.Request.Context(), 50)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"id":        e.ID,
			"kind":      e.Kind,
			"amount":    e.Amount,
			"meta":      e.Meta,
			"createdAt": e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"carryDos":  bank.CarryDOS,
		"adminDos":  bank.AdminDOS,
		"updatedAt": bank.UpdatedAt,
		"ledger":    out,
	})
}

type adminCreditRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleAdminCredit(c *gin.Context) {
	playerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid player id"))
		return
	}
	var req adminCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid request body"))
		return
	}

	player, svcErr := s.players.AdminCredit(c.Request.Context(), playerID, req.Amount)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "player": playerJSON(player)})
}

type adminSetBalanceRequest struct {
	Balance int64 `json:"balance"`
}

func (s *Server) handleAdminSetBalance(c *gin.Context) {
	playerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid player id"))
		return
	}
	var req adminSetBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid request body"))
		return
	}

	player, svcErr := s.players.AdminSetBalance(c.Request.Context(), playerID, req.Balance)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "player": playerJSON(player)})
}

type adminSetStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleAdminSetStatus(c *gin.Context) {
	playerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid player id"))
		return
	}
	var req adminSetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid request body"))
		return
	}

	player, svcErr := s.players.AdminSetStatus(c.Request.Context(), playerID, entities.PlayerStatus(req.Status))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "player": playerJSON(player)})
}

// parseLimit clamps the limit query parameter to [1, max], with a
// default when absent or malformed
func parseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
