package personname

import "testing"

func TestNormalize_SplitsFirstAndLast(t *testing.T) {
	name := Normalize("Jon Jones")
	if name.First != "Jon" || name.Last != "Jones" {
		t.Fatalf("unexpected split: %+v", name)
	}
}

func TestNormalize_ExtractsQuotedNickname(t *testing.T) {
	name := Normalize(`Jon "Bones" Jones`)
	if name.Nickname != "Bones" {
		t.Fatalf("expected nickname Bones, got %q", name.Nickname)
	}
	if name.First != "Jon" || name.Last != "Jones" {
		t.Fatalf("nickname leaked into name parts: %+v", name)
	}
}

func TestNormalize_ExtractsParenthesizedNickname(t *testing.T) {
	name := Normalize("Deontay (The Bronze Bomber) Wilder")
	if name.Nickname != "The Bronze Bomber" {
		t.Fatalf("expected nickname, got %q", name.Nickname)
	}
	if name.Last != "Wilder" {
		t.Fatalf("unexpected last name: %q", name.Last)
	}
}

func TestNormalize_FoldsGenerationalSuffix(t *testing.T) {
	name := Normalize("John Smith Jr")
	if name.First != "John" {
		t.Fatalf("unexpected first name: %q", name.First)
	}
	if name.Last != "Smith Jr" {
		t.Fatalf("expected suffix folded into last name, got %q", name.Last)
	}
}

func TestNormalize_SuffixOnlyPairStaysLastName(t *testing.T) {
	name := Normalize("Smith Jr")
	if name.First != "" || name.Last != "Smith Jr" {
		t.Fatalf("unexpected parts: %+v", name)
	}
}

func TestNormalize_SingleTokenIsLastNameOnly(t *testing.T) {
	name := Normalize("Shogun")
	if name.First != "" || name.Last != "Shogun" {
		t.Fatalf("single-token name should be last-name-only: %+v", name)
	}
}

func TestNormalize_PercentDecodesEscapedNames(t *testing.T) {
	name := Normalize("Jos%C3%A9%20Aldo")
	if name.First != "José" || name.Last != "Aldo" {
		t.Fatalf("unexpected decoded parts: %+v", name)
	}
}

func TestNormalize_KeepsApostropheNamesIntact(t *testing.T) {
	name := Normalize("Sean O'Malley")
	if name.Nickname != "" {
		t.Fatalf("apostrophe treated as nickname quote: %+v", name)
	}
	if name.Last != "O'Malley" {
		t.Fatalf("unexpected last name: %q", name.Last)
	}
}

func TestLastNameKey_StableUnderDiacritics(t *testing.T) {
	if LastNameKey("Danrley Mélèdje") != LastNameKey("Danrley Meledje") {
		t.Fatal("diacritics changed the comparison key")
	}
	if LastNameKey("Danrley Mélèdje") != "meledje" {
		t.Fatalf("unexpected key: %q", LastNameKey("Danrley Mélèdje"))
	}
}

func TestLastNameKey_MatchesSuffixStoredIdentically(t *testing.T) {
	if LastNameKey("John Smith Jr") != LastNameKey("Smith Jr") {
		t.Fatal("suffix handling broke key equality")
	}
}

func TestNormalize_CollapsesExtraWhitespaceAroundNickname(t *testing.T) {
	name := Normalize(`Israel  "The Last Stylebender"  Adesanya`)
	if name.First != "Israel" || name.Last != "Adesanya" {
		t.Fatalf("unexpected parts: %+v", name)
	}
	if name.Nickname != "The Last Stylebender" {
		t.Fatalf("unexpected nickname: %q", name.Nickname)
	}
}
