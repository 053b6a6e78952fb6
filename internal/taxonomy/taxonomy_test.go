package taxonomy

import "testing"

func TestCategoryFor_KnownReasonCode(t *testing.T) {
	c, ok := CategoryFor("data-exfiltration")
	if !ok || c.ID != "data-exfiltration" {
		t.Fatalf("expected data-exfiltration category, got %+v ok=%v", c, ok)
	}
}

func TestCategoryFor_UnknownReasonCode(t *testing.T) {
	if _, ok := CategoryFor("not-a-real-reason-code"); ok {
		t.Fatal("expected ok=false for an unmapped reason code")
	}
}

func TestAll_ReturnsEightCategories(t *testing.T) {
	if got := len(All()); got != 8 {
		t.Fatalf("expected 8 taxonomy categories, got %d", got)
	}
}
