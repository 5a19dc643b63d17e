package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"ddj/domain/apperrors"
	"ddj/domain/entities"
	"ddj/domain/events"
	"ddj/domain/interfaces"
)

// Gift codes use an alphabet without the ambiguous glyphs O, 0, I, 1.
const (
	giftCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	giftCodeLength   = 12
	codeHashPrefix   = "DDJ|"
)

// HashGiftCode computes the stored salted hash of a code's plaintext.
// The seed acts as the salt so leaked hashes are useless without it.
func HashGiftCode(seed, code string) (string, error) {
	if len(seed) < minSeedLength {
		return "", apperrors.New(apperrors.KindConfigError, "secret seed missing or too short")
	}
	sum := sha256.Sum256([]byte(codeHashPrefix + seed + "|" + code))
	return hex.EncodeToString(sum[:]), nil
}

// ValidGiftCodeFormat reports whether the plaintext matches the
// 12-character surface format.
func ValidGiftCodeFormat(code string) bool {
	if len(code) != giftCodeLength {
		return false
	}
	for _, c := range code {
		found := false
		for _, a := range giftCodeAlphabet {
			if c == a {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type redemptionService struct {
	uowFactory interfaces.UnitOfWorkFactory
	seed       string
	now        func() time.Time
}

// NewRedemptionService creates a new redemption service
func NewRedemptionService(uowFactory interfaces.UnitOfWorkFactory, seed string) interfaces.RedemptionService {
	return &redemptionService{
		uowFactory: uowFactory,
		seed:       seed,
		now:        time.Now,
	}
}

// Redeem redeems a gift code for a player
func (s *redemptionService) Redeem(ctx context.Context, playerID int64, code string) (*entities.GiftCode, error) {
	if !ValidGiftCodeFormat(code) {
		return nil, apperrors.New(apperrors.KindBadRequest, "malformed gift code")
	}

	codeHash, err := HashGiftCode(s.seed, code)
	if err != nil {
		return nil, err
	}

	now := s.now()

	uow := s.uowFactory.CreateForTransaction()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByIDForUpdate(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, apperrors.Newf(apperrors.KindNotFound, "player %d not found", playerID)
	}
	if !player.IsActive() {
		return nil, apperrors.Newf(apperrors.KindForbidden, "player %d is suspended", playerID)
	}

	giftCode, err := uow.GiftCodeRepository().GetByHashForUpdate(ctx, codeHash)
	if err != nil {
		return nil, err
	}
	if giftCode == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "gift code not found")
	}
	if giftCode.Status != entities.GiftCodeStatusActive {
		return nil, apperrors.New(apperrors.KindConflict, "gift code already used")
	}
	if !giftCode.IsRedeemable(now) {
		return nil, apperrors.New(apperrors.KindConflict, "gift code expired")
	}

	redeemed, err := uow.GiftCodeRepository().MarkRedeemed(ctx, giftCode.ID, playerID, now)
	if err != nil {
		return nil, err
	}
	if !redeemed {
		return nil, apperrors.New(apperrors.KindConflict, "gift code already used")
	}

	if err := uow.PlayerRepository().UpdateBalance(ctx, playerID, player.Balance+giftCode.Value); err != nil {
		return nil, err
	}
	entry := &entities.LedgerEntry{
		PlayerID: playerID,
		Kind:     entities.LedgerKindRedeem,
		Amount:   giftCode.Value,
		Meta:     map[string]any{"giftCodeId": giftCode.ID.String()},
	}
	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := uow.EventPublisher().Publish(events.GiftCodeRedeemedEvent{
		PlayerID: playerID,
		CodeID:   giftCode.ID.String(),
		Value:    giftCode.Value,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish gift code redeemed event")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"playerId":   playerID,
		"giftCodeId": giftCode.ID,
		"value":      giftCode.Value,
	}).Info("Gift code redeemed")

	giftCode.Status = entities.GiftCodeStatusRedeemed
	giftCode.RedeemedBy = &playerID
	giftCode.RedeemedAt = &now
	return giftCode, nil
}

type giftCodeService struct {
	uowFactory interfaces.UnitOfWorkFactory
	seed       string
}

// NewGiftCodeService creates a new gift code service
func NewGiftCodeService(uowFactory interfaces.UnitOfWorkFactory, seed string) interfaces.GiftCodeService {
	return &giftCodeService{uowFactory: uowFactory, seed: seed}
}

// generateCode produces a random code from the surface alphabet
func generateCode() (string, error) {
	buf := make([]byte, giftCodeLength)
	max := big.NewInt(int64(len(giftCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate gift code: %w", err)
		}
		buf[i] = giftCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// CreateCode mints a new gift code and returns the code text once
func (s *giftCodeService) CreateCode(ctx context.Context, value int64, expiresAt *time.Time) (string, *entities.GiftCode, error) {
	if value <= 0 {
		return "", nil, apperrors.New(apperrors.KindBadRequest, "value must be positive")
	}

	code, err := generateCode()
	if err != nil {
		return "", nil, err
	}
	codeHash, err := HashGiftCode(s.seed, code)
	if err != nil {
		return "", nil, err
	}

	gc := &entities.GiftCode{
		ID:        uuid.New(),
		CodeHash:  codeHash,
		Value:     value,
		Status:    entities.GiftCodeStatusActive,
		ExpiresAt: expiresAt,
	}

	uow := s.uowFactory.CreateForTransaction()
	if err := uow.Begin(ctx); err != nil {
		return "", nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.GiftCodeRepository().Create(ctx, gc); err != nil {
		return "", nil, err
	}

	if err := uow.Commit(); err != nil {
		return "", nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"giftCodeId": gc.ID,
		"value":      value,
	}).Info("Gift code created")

	return code, gc, nil
}
