package engine

import "testing"

func red(r uint8) Card    { return NewCard(SuitRed, r) }
func blue(r uint8) Card   { return NewCard(SuitBlue, r) }
func green(r uint8) Card  { return NewCard(SuitGreen, r) }
func yellow(r uint8) Card { return NewCard(SuitYellow, r) }

// trickOf builds a trick from cards played by p1, p2, ... in order.
func trickOf(cards ...Card) *Trick {
	t := &Trick{}
	for i, c := range cards {
		t.add(PlayerID("p"+string(rune('1'+i))), c)
	}
	return t
}

func handOf(cards ...Card) *Player {
	p := NewPlayer("x", "X")
	p.Hand = cards
	return p
}

// TestFollowSuitRequired: holding RED-7 and BLUE-8 against a RED-10 lead, BLUE-8 is illegal.
func TestFollowSuitRequired(t *testing.T) {
	p := handOf(red(7), blue(8))
	tr := trickOf(red(10))
	if IsValidPlay(p, blue(8), tr) {
		t.Error("BLUE_8 should be illegal while holding RED_7")
	}
	if !IsValidPlay(p, red(7), tr) {
		t.Error("RED_7 follows suit and should be legal")
	}
}

// TestFollowSuitVoid: with no lead-suit card any card may be played.
func TestFollowSuitVoid(t *testing.T) {
	p := handOf(green(2), blue(8))
	tr := trickOf(red(10))
	if !IsValidPlay(p, blue(8), tr) {
		t.Error("BLUE_8 should be legal without any RED card")
	}
}

// TestWildAlwaysLegal: Wizards and Jesters may be played regardless of lead.
func TestWildAlwaysLegal(t *testing.T) {
	p := handOf(red(7), Wizard(), Jester())
	tr := trickOf(red(10))
	if !IsValidPlay(p, Wizard(), tr) || !IsValidPlay(p, Jester(), tr) {
		t.Error("wild cards must always be legal")
	}
}

// TestFirstCardAlwaysLegal: the opening card of a trick is never restricted.
func TestFirstCardAlwaysLegal(t *testing.T) {
	p := handOf(red(7), blue(8))
	for _, c := range p.Hand {
		if !IsValidPlay(p, c, &Trick{}) {
			t.Errorf("%s should be legal as the first card", c)
		}
	}
}

// TestWizardLeadFreesPlay: after a Wizard lead there is no suit to follow.
func TestWizardLeadFreesPlay(t *testing.T) {
	p := handOf(red(7), blue(8))
	tr := trickOf(Wizard(), red(3))
	if !IsValidPlay(p, blue(8), tr) {
		t.Error("no lead suit after a Wizard; BLUE_8 should be legal")
	}
}

// TestJesterLeadTakesNextSuit: a Jester lead defers to the next non-Jester card.
func TestJesterLeadTakesNextSuit(t *testing.T) {
	p := handOf(red(7), blue(8))
	if !IsValidPlay(p, blue(8), trickOf(Jester())) {
		t.Error("only a Jester played; any card is legal")
	}
	tr := trickOf(Jester(), Jester(), red(2))
	if IsValidPlay(p, blue(8), tr) {
		t.Error("RED was established after the Jesters; BLUE_8 is illegal")
	}
}

// TestLegalCards lists exactly the playable subset.
func TestLegalCards(t *testing.T) {
	p := handOf(red(7), blue(8), Jester(), red(1))
	got := LegalCards(p, trickOf(red(10)))
	want := []Card{red(7), Jester(), red(1)}
	if len(got) != len(want) {
		t.Fatalf("LegalCards = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LegalCards[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if n := len(LegalCards(p, &Trick{})); n != 4 {
		t.Errorf("opening LegalCards = %d cards, want 4", n)
	}
}
