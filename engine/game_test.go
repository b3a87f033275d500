package engine

import (
	"errors"
	"testing"
)

func newPlayers(n int) []*Player {
	players := make([]*Player, n)
	for i := range players {
		id := PlayerID("p" + string(rune('1'+i)))
		players[i] = NewPlayer(id, "Player"+string(rune('A'+i)))
	}
	return players
}

func seatOrder(players []*Player) []PlayerID {
	order := make([]PlayerID, len(players))
	for i, p := range players {
		order[i] = p.ID
	}
	return order
}

func mustStart(t *testing.T, players []*Player, number int) *Round {
	t.Helper()
	r, err := StartRound(DefaultHouseRules(), players, seatOrder(players), number, seeded(uint64(number)))
	if err != nil {
		t.Fatalf("StartRound(%d): %v", number, err)
	}
	return r
}

// riggedRound starts a round of len(hands[0]) cards and replaces the dealt
// hands with fixed ones and no trump.
func riggedRound(t *testing.T, hands ...[]Card) *Round {
	t.Helper()
	players := newPlayers(len(hands))
	r := mustStart(t, players, len(hands[0]))
	for i, p := range players {
		p.Hand = append([]Card(nil), hands[i]...)
	}
	r.Trump = EmptyCard
	return r
}

func mustPredict(t *testing.T, r *Round, id PlayerID, v int) {
	t.Helper()
	if err := r.Predict(id, v); err != nil {
		t.Fatalf("Predict(%s, %d): %v", id, v, err)
	}
}

func mustPlay(t *testing.T, r *Round, id PlayerID, c Card) {
	t.Helper()
	if err := r.PlayCard(id, c, false); err != nil {
		t.Fatalf("PlayCard(%s, %s): %v", id, c, err)
	}
}

// TestStartRoundDeal verifies hand sizes, trump draw, and card conservation.
func TestStartRoundDeal(t *testing.T) {
	hr := DefaultHouseRules()
	for n := 3; n <= 6; n++ {
		for _, k := range []int{1, 2, hr.MaxRound(n)} {
			players := newPlayers(n)
			r := mustStart(t, players, k)

			handTotal := 0
			for _, p := range players {
				if len(p.Hand) != k {
					t.Errorf("n=%d k=%d: %s has %d cards", n, k, p.ID, len(p.Hand))
				}
				handTotal += len(p.Hand)
			}
			trump := 0
			if r.Trump != EmptyCard {
				trump = 1
			}
			if handTotal+r.DeckLen()+trump != DeckSize {
				t.Errorf("n=%d k=%d: hands %d + deck %d + trump %d != %d", n, k, handTotal, r.DeckLen(), trump, DeckSize)
			}
			if r.CardCount() != DeckSize {
				t.Errorf("n=%d k=%d: CardCount = %d", n, k, r.CardCount())
			}
			if (n*k == DeckSize) != (r.Trump == EmptyCard) {
				t.Errorf("n=%d k=%d: trump %s, want none only when the deck is used up", n, k, r.Trump)
			}
			if r.Phase != PhasePredicting || r.CurrentPlayer != "p1" {
				t.Errorf("n=%d k=%d: phase %s current %s", n, k, r.Phase, r.CurrentPlayer)
			}
		}
	}
}

// TestMaxRound verifies ⌊60 / players⌋.
func TestMaxRound(t *testing.T) {
	hr := DefaultHouseRules()
	want := map[int]int{3: 20, 4: 15, 5: 12, 6: 10}
	for n, w := range want {
		if got := hr.MaxRound(n); got != w {
			t.Errorf("MaxRound(%d) = %d, want %d", n, got, w)
		}
	}
}

// TestStartRoundTooManyCards verifies a deal past the budget is rejected untouched.
func TestStartRoundTooManyCards(t *testing.T) {
	players := newPlayers(3)
	_, err := StartRound(DefaultHouseRules(), players, seatOrder(players), 21, seeded(1))
	if !errors.Is(err, ErrInvalidRound) {
		t.Fatalf("err = %v, want ErrInvalidRound", err)
	}
	for _, p := range players {
		if p.Hand != nil {
			t.Errorf("%s was dealt %d cards on a rejected round", p.ID, len(p.Hand))
		}
	}
	if _, err := StartRound(DefaultHouseRules(), players, seatOrder(players), 0, seeded(1)); !errors.Is(err, ErrInvalidRound) {
		t.Errorf("round 0 err = %v, want ErrInvalidRound", err)
	}
	if _, err := StartRound(DefaultHouseRules(), players, []PlayerID{"p1", "p1", "p2"}, 1, seeded(1)); !errors.Is(err, ErrInvalidRound) {
		t.Errorf("duplicate order err = %v, want ErrInvalidRound", err)
	}
}

// TestStartRoundResets verifies per-round state resets and scores persist.
func TestStartRoundResets(t *testing.T) {
	players := newPlayers(3)
	two := 2
	players[1].Prediction = &two
	players[1].TricksWon = 4
	players[1].Score = 30
	players[1].RoundScores = []int{30}

	mustStart(t, players, 2)
	p := players[1]
	if p.Prediction != nil || p.TricksWon != 0 {
		t.Errorf("round state not reset: prediction=%v tricks=%d", p.Prediction, p.TricksWon)
	}
	if p.Score != 30 || len(p.RoundScores) != 1 {
		t.Errorf("game state lost: score=%d history=%v", p.Score, p.RoundScores)
	}
}

// TestPredictOutOfOrder verifies only the expected bidder may bid.
func TestPredictOutOfOrder(t *testing.T) {
	r := mustStart(t, newPlayers(3), 3)
	if err := r.Predict("p2", 1); !errors.Is(err, ErrTurnViolation) {
		t.Fatalf("err = %v, want ErrTurnViolation", err)
	}
	mustPredict(t, r, "p1", 1)
	if err := r.Predict("p1", 2); !errors.Is(err, ErrTurnViolation) {
		t.Errorf("second bid err = %v, want ErrTurnViolation", err)
	}
	if *r.Players[0].Prediction != 1 {
		t.Errorf("prediction changed to %d", *r.Players[0].Prediction)
	}
	if r.CurrentPlayer != "p2" {
		t.Errorf("CurrentPlayer = %s, want p2", r.CurrentPlayer)
	}
	if err := r.Predict("nobody", 0); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("unknown player err = %v", err)
	}
}

// TestHookRule: 3 players dealt 5; bids 2 and 1; a last bid of 2 is rejected.
func TestHookRule(t *testing.T) {
	r := mustStart(t, newPlayers(3), 5)
	mustPredict(t, r, "p1", 2)
	mustPredict(t, r, "p2", 1)

	if err := r.Predict("p3", 2); !errors.Is(err, ErrInvalidPrediction) {
		t.Fatalf("err = %v, want ErrInvalidPrediction", err)
	}
	if r.Players[2].Prediction != nil {
		t.Error("rejected bid must leave the prediction unset")
	}
	if r.Phase != PhasePredicting {
		t.Errorf("phase = %s after rejected bid", r.Phase)
	}

	mustPredict(t, r, "p3", 3)
	if r.Phase != PhasePlaying {
		t.Errorf("phase = %s, want playing", r.Phase)
	}
	if r.CurrentPlayer != "p1" {
		t.Errorf("CurrentPlayer = %s, want p1 (Order[0])", r.CurrentPlayer)
	}
	if err := r.Predict("p1", 0); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("bid during play err = %v", err)
	}
}

// TestPredictionRange verifies bids outside [0, cards dealt].
func TestPredictionRange(t *testing.T) {
	r := mustStart(t, newPlayers(3), 2)
	for _, v := range []int{-1, 3} {
		if err := r.Predict("p1", v); !errors.Is(err, ErrInvalidPrediction) {
			t.Errorf("Predict(%d) err = %v", v, err)
		}
	}
	mustPredict(t, r, "p1", 2)
}

// TestPlayRound plays a rigged two-trick round end to end.
func TestPlayRound(t *testing.T) {
	r := riggedRound(t,
		[]Card{red(13), blue(2)},
		[]Card{red(5), green(3)},
		[]Card{Wizard(), red(1)},
	)
	mustPredict(t, r, "p1", 1)
	mustPredict(t, r, "p2", 0)
	mustPredict(t, r, "p3", 2)

	if err := r.PlayCard("p2", red(5), false); !errors.Is(err, ErrTurnViolation) {
		t.Fatalf("out of turn err = %v", err)
	}
	mustPlay(t, r, "p1", red(13))

	if err := r.PlayCard("p2", yellow(9), false); !errors.Is(err, ErrCardNotInHand) {
		t.Errorf("missing card err = %v", err)
	}
	if err := r.PlayCard("p2", green(3), false); !errors.Is(err, ErrInvalidTurn) {
		t.Errorf("revoke err = %v", err)
	}
	if len(r.Players[1].Hand) != 2 || r.Trick.Len() != 1 {
		t.Fatal("rejected plays must not change hand or trick")
	}
	mustPlay(t, r, "p2", red(5))
	mustPlay(t, r, "p3", Wizard())

	if !r.TrickComplete() {
		t.Fatal("trick should be complete")
	}
	if err := r.PlayCard("p1", blue(2), false); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("play into complete trick err = %v", err)
	}
	w, err := r.EndTrick()
	if err != nil || w != "p3" {
		t.Fatalf("EndTrick = %s, %v; want p3", w, err)
	}
	if r.CurrentPlayer != "p3" || r.Trick.Len() != 0 || r.Last.Winner != "p3" || len(r.Last.Plays) != 3 {
		t.Errorf("after trick: current=%s trick=%d last=%+v", r.CurrentPlayer, r.Trick.Len(), r.Last)
	}

	mustPlay(t, r, "p3", red(1))
	mustPlay(t, r, "p1", blue(2)) // void in red
	mustPlay(t, r, "p2", green(3))
	if w, _ := r.EndTrick(); w != "p3" {
		t.Fatalf("second trick winner = %s, want p3", w)
	}
	if r.Phase != PhaseFinished {
		t.Fatalf("phase = %s, want finished", r.Phase)
	}

	order, err := r.EndRound()
	if err != nil {
		t.Fatalf("EndRound: %v", err)
	}
	if len(order) != 3 || order[0] != "p3" || order[1] != "p1" || order[2] != "p2" {
		t.Errorf("next order = %v, want [p3 p1 p2]", order)
	}
	wantScores := []int{-10, 20, 40}
	for i, p := range r.Players {
		if p.Score != wantScores[i] {
			t.Errorf("%s score = %d, want %d", p.ID, p.Score, wantScores[i])
		}
	}
	if _, err := r.EndRound(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("double EndRound err = %v", err)
	}
}

// TestCheatBypass verifies the bypass flag skips follow-suit only.
func TestCheatBypass(t *testing.T) {
	r := riggedRound(t,
		[]Card{red(13)},
		[]Card{red(5)},
		[]Card{blue(1)},
	)
	r.Players[1].Hand = []Card{red(5), green(3)}
	mustPredict(t, r, "p1", 0)
	mustPredict(t, r, "p2", 0)
	mustPredict(t, r, "p3", 0)
	mustPlay(t, r, "p1", red(13))
	if err := r.PlayCard("p2", green(3), true); err != nil {
		t.Fatalf("bypass play: %v", err)
	}
	if err := r.PlayCard("p3", yellow(2), true); !errors.Is(err, ErrCardNotInHand) {
		t.Errorf("bypass must still require the card: %v", err)
	}
}

// TestEndTrickEmpty verifies EndTrick with nothing played.
func TestEndTrickEmpty(t *testing.T) {
	r := mustStart(t, newPlayers(3), 1)
	if _, err := r.EndTrick(); !errors.Is(err, ErrEmptyTrick) {
		t.Errorf("err = %v, want ErrEmptyTrick", err)
	}
	if _, err := r.EndRound(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("EndRound before play err = %v", err)
	}
}

// TestEndTrickIncomplete verifies a partial trick cannot be resolved.
func TestEndTrickIncomplete(t *testing.T) {
	r := mustStart(t, newPlayers(3), 2)
	for _, id := range r.Order {
		mustPredict(t, r, id, 0)
	}
	lead := r.CurrentPlayer
	p, _ := r.Player(lead)
	mustPlay(t, r, lead, p.Hand[0])

	if _, err := r.EndTrick(); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("EndTrick on partial trick err = %v, want ErrWrongPhase", err)
	}
	if r.TricksPlayed != 0 || r.Trick.Len() != 1 || r.Last != nil {
		t.Errorf("partial trick was touched: played=%d len=%d", r.TricksPlayed, r.Trick.Len())
	}
	if got := r.CardCount(); got != 60 {
		t.Errorf("CardCount = %d, want 60", got)
	}
}

// TestTricksLeaderTie verifies ties go to the earliest seat.
func TestTricksLeaderTie(t *testing.T) {
	r := mustStart(t, newPlayers(4), 3)
	r.Players[1].TricksWon = 1
	r.Players[2].TricksWon = 1
	r.Players[3].TricksWon = 1
	if got := r.TricksLeader(); got != "p2" {
		t.Errorf("TricksLeader = %s, want p2", got)
	}
}

// TestPredictionOrder verifies rotation from a starting player.
func TestPredictionOrder(t *testing.T) {
	players := newPlayers(4)
	order, err := PredictionOrder(players, "p3")
	if err != nil {
		t.Fatal(err)
	}
	want := []PlayerID{"p3", "p4", "p1", "p2"}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
	if _, err := PredictionOrder(players, "zz"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("unknown start err = %v", err)
	}
}

// TestFullGameConservesCards plays every round of a 4-player game with the
// first legal card and checks card conservation after every play.
func TestFullGameConservesCards(t *testing.T) {
	hr := DefaultHouseRules()
	players := newPlayers(4)
	order := seatOrder(players)

	for k := 1; k <= hr.MaxRound(len(players)); k++ {
		r, err := StartRound(hr, players, order, k, seeded(uint64(k)*31))
		if err != nil {
			t.Fatalf("round %d: %v", k, err)
		}
		for range order {
			id, _ := r.ExpectedBidder()
			mustPredict(t, r, id, 0)
		}
		for r.Phase == PhasePlaying {
			for !r.TrickComplete() {
				p, _ := r.Player(r.CurrentPlayer)
				legal := LegalCards(p, &r.Trick)
				if len(legal) == 0 {
					t.Fatalf("round %d: %s has no legal card", k, p.ID)
				}
				mustPlay(t, r, p.ID, legal[0])
				if r.CardCount() != DeckSize {
					t.Fatalf("round %d: CardCount = %d", k, r.CardCount())
				}
			}
			w, err := r.EndTrick()
			if err != nil {
				t.Fatalf("round %d: EndTrick: %v", k, err)
			}
			if r.CurrentPlayer != w {
				t.Fatalf("round %d: winner %s does not lead", k, w)
			}
		}
		if r.TricksPlayed != k {
			t.Errorf("round %d: %d tricks played", k, r.TricksPlayed)
		}
		order, err = r.EndRound()
		if err != nil {
			t.Fatalf("round %d: EndRound: %v", k, err)
		}
		if order[0] != r.TricksLeader() {
			t.Errorf("round %d: next order starts with %s, want %s", k, order[0], r.TricksLeader())
		}
	}
	for _, p := range players {
		if len(p.RoundScores) != hr.MaxRound(4) {
			t.Errorf("%s has %d round scores", p.ID, len(p.RoundScores))
		}
	}
}
