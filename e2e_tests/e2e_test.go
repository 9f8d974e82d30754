package e2etests

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/reqsign"
)

// The suite runs against a live API started with APP_AIRDROP_ENABLED=true.
const (
	baseURLEnv = "E2E_BASE_URL"
	timeout    = 5 * time.Second
	waitReady  = 20 * time.Second
	// rent reserves with the default rent settings
	initRent  = 1_851_360 + 890_880
	entryRent = 1_447_680
)

var httpClient = &http.Client{Timeout: timeout}

type actor struct {
	id  escrow.Identity
	key ed25519.PrivateKey
}

func newActor(t *testing.T) actor {
	t.Helper()

	pub, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}

	return actor{id: escrow.Identity(pub), key: key}
}

func TestE2E_GameLifecycle(t *testing.T) {
	base := baseURL(t)
	waitUntilReady(t, base)

	gameID := uint64(time.Now().UnixNano())
	fee := uint64(100)

	authority, recipient, stranger := newActor(t), newActor(t), newActor(t)
	players := []actor{newActor(t), newActor(t), newActor(t)}

	airdrop(t, base, authority.id, initRent)

	for _, p := range players {
		airdrop(t, base, p.id, fee+entryRent)
	}

	t.Run("initialize", func(t *testing.T) {
		code, body := post(t, base, authority, "/games", map[string]string{
			"gameId":       strconv.FormatUint(gameID, 10),
			"entryFee":     strconv.FormatUint(fee, 10),
			"feeRecipient": recipient.id.String(),
		})
		if code != http.StatusCreated {
			t.Fatalf("want 201, got %d (%s)", code, body)
		}

		code, _ = post(t, base, authority, "/games", map[string]string{
			"gameId":       strconv.FormatUint(gameID, 10),
			"entryFee":     "1",
			"feeRecipient": recipient.id.String(),
		})
		if code != http.StatusConflict {
			t.Fatalf("re-initialize: want 409, got %d", code)
		}
	})

	t.Run("three_joins", func(t *testing.T) {
		path := fmt.Sprintf("/games/%d/join", gameID)

		for i, p := range players {
			code, body := post(t, base, p, path, nil)
			if code != http.StatusOK {
				t.Fatalf("join %d: want 200, got %d (%s)", i, code, body)
			}
		}

		code, _ := post(t, base, players[0], path, nil)
		if code != http.StatusConflict && code != http.StatusPaymentRequired {
			t.Fatalf("double join: want 409 or 402, got %d", code)
		}

		g := getGame(t, base, gameID)
		if g.PrizePool.Lamports != "300" || g.PlayerCount != "3" || g.VaultBalance.Lamports != "300" {
			t.Fatalf("after joins: %+v", g)
		}
	})

	endPath := fmt.Sprintf("/games/%d/end", gameID)
	endBody := map[string]string{"winner": players[2].id.String(), "feeRecipient": recipient.id.String()}

	t.Run("stranger_cannot_end", func(t *testing.T) {
		code, _ := post(t, base, stranger, endPath, endBody)
		if code != http.StatusForbidden {
			t.Fatalf("want 403, got %d", code)
		}
	})

	t.Run("end_splits_90_10", func(t *testing.T) {
		code, body := post(t, base, authority, endPath, endBody)
		if code != http.StatusOK {
			t.Fatalf("want 200, got %d (%s)", code, body)
		}

		var res struct {
			WinnerPrize struct{ Lamports string } `json:"winnerPrize"`
			Fee         struct{ Lamports string } `json:"fee"`
		}
		if err := json.Unmarshal([]byte(body), &res); err != nil {
			t.Fatalf("decode: %v", err)
		}

		if res.WinnerPrize.Lamports != "270" || res.Fee.Lamports != "30" {
			t.Fatalf("split: %s", body)
		}

		g := getGame(t, base, gameID)
		if g.IsActive || g.VaultBalance.Lamports != "0" || g.Winner != players[2].id.String() {
			t.Fatalf("after end: %+v", g)
		}
	})

	t.Run("resolved_is_terminal", func(t *testing.T) {
		code, _ := post(t, base, authority, endPath, endBody)
		if code != http.StatusConflict {
			t.Fatalf("second end: want 409, got %d", code)
		}

		late := newActor(t)
		airdrop(t, base, late.id, fee+entryRent)

		code, _ = post(t, base, late, fmt.Sprintf("/games/%d/join", gameID), nil)
		if code != http.StatusConflict {
			t.Fatalf("join after end: want 409, got %d", code)
		}
	})
}

type amount struct {
	Lamports string `json:"lamports"`
}

type game struct {
	PrizePool    amount `json:"prizePool"`
	VaultBalance amount `json:"vaultBalance"`
	PlayerCount  string `json:"playerCount"`
	IsActive     bool   `json:"isActive"`
	Winner       string `json:"winner"`
}

func baseURL(t *testing.T) string {
	t.Helper()

	u := os.Getenv(baseURLEnv)
	if u == "" {
		t.Skipf("%s not set", baseURLEnv)
	}

	return u
}

func getGame(t *testing.T, base string, gameID uint64) game {
	t.Helper()

	resp, err := httpClient.Get(fmt.Sprintf("%s/games/%d", base, gameID))
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get game: status %d", resp.StatusCode)
	}

	var g game
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		t.Fatalf("decode game: %v", err)
	}

	return g
}

func airdrop(t *testing.T, base string, to escrow.Identity, lamports uint64) {
	t.Helper()

	data, _ := json.Marshal(map[string]string{"identity": to.String(), "lamports": strconv.FormatUint(lamports, 10)})

	resp, err := httpClient.Post(base+"/airdrop", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("airdrop: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("airdrop: status %d (%s); is APP_AIRDROP_ENABLED set?", resp.StatusCode, b)
	}
}

func post(t *testing.T, base string, signer actor, path string, body any) (int, string) {
	t.Helper()

	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
	}

	req, err := http.NewRequest(http.MethodPost, base+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	h := reqsign.Sign(signer.key, http.MethodPost, path, time.Now(), data)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(reqsign.HeaderIdentity, h.Identity)
	req.Header.Set(reqsign.HeaderTimestamp, h.Timestamp)
	req.Header.Set(reqsign.HeaderSignature, h.Signature)

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, string(b)
}

// waitUntilReady polls /healthz until it answers 200 or waitReady elapses.
func waitUntilReady(t *testing.T, base string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitReady)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("service not ready at %s within %s", base, waitReady)
		case <-tick.C:
			resp, err := httpClient.Get(base + "/healthz")
			if err != nil {
				continue
			}

			_ = resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				return
			}
		}
	}
}
