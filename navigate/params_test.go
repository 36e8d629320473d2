package navigate

import (
	"testing"

	"github.com/MaaXYZ/maa-framework-go/v4"
)

func TestDecodeParam_DirectObject(t *testing.T) {
	var p goToParams
	if err := decodeParam(`{"k": 2, "x": 512.5, "y": 488}`, &p); err != nil {
		t.Fatalf("decodeParam: %v", err)
	}
	if p.K != 2 || p.X != 512.5 || p.Y != 488 {
		t.Errorf("decoded %+v", p)
	}
}

func TestDecodeParam_StringWrapped(t *testing.T) {
	var p goToParams
	if err := decodeParam(`"{\"k\": 1, \"x\": 10, \"y\": 20}"`, &p); err != nil {
		t.Fatalf("decodeParam: %v", err)
	}
	if p.K != 1 || p.X != 10 || p.Y != 20 {
		t.Errorf("decoded %+v", p)
	}
}

func TestDecodeParam_EmptyAndNull(t *testing.T) {
	var p searchParams
	if err := decodeParam("", &p); err != nil {
		t.Errorf("empty param should be accepted: %v", err)
	}
	if err := decodeParam("null", &p); err != nil {
		t.Errorf("null param should be accepted: %v", err)
	}
}

func TestDecodeParam_Garbage(t *testing.T) {
	var p goToParams
	if err := decodeParam(`{{{{`, &p); err == nil {
		t.Error("garbage param should fail")
	}
}

func TestTwoPointParams_Validate(t *testing.T) {
	good := twoPointParams{Start: pointParam{100, 200}, End: pointParam{300, 200}}
	if err := good.validate(); err != nil {
		t.Errorf("valid params rejected: %v", err)
	}
	bad := twoPointParams{Start: pointParam{100, 200}, End: pointParam{100, 200}}
	if err := bad.validate(); err == nil {
		t.Error("zero-length drag accepted")
	}
}

func TestDirectionsParams_DirectionSet(t *testing.T) {
	p := directionsParams{
		North: vectorParam{Start: pointParam{300, 480}, End: pointParam{300, 120}},
		East:  vectorParam{Start: pointParam{200, 300}, End: pointParam{600, 300}},
	}
	set, err := p.directionSet()
	if err != nil {
		t.Fatalf("directionSet: %v", err)
	}
	if !set.North.Defined() || !set.East.Defined() {
		t.Error("both directions should be defined")
	}

	p.East.End = p.East.Start
	if _, err := p.directionSet(); err == nil {
		t.Error("degenerate east vector accepted")
	}
}

func TestSearchParams_ApplyDefaults(t *testing.T) {
	p := searchParams{Templates: []string{"camp"}}
	p.applyDefaults("spiral", 200)
	if p.Pattern != "spiral" || p.MaxDistance != 200 {
		t.Errorf("defaults not applied: %+v", p)
	}

	p = searchParams{Templates: []string{"camp"}, Pattern: "grid", MaxDistance: 80}
	p.applyDefaults("spiral", 200)
	if p.Pattern != "grid" || p.MaxDistance != 80 {
		t.Errorf("explicit values overridden: %+v", p)
	}
}

func TestRoiOverride(t *testing.T) {
	if roiOverride(coordOCRNode, [4]int{}) != nil {
		t.Error("zero region should yield no override")
	}
	if roiOverride(coordOCRNode, [4]int{40, 10, 0, 48}) != nil {
		t.Error("degenerate region should yield no override")
	}

	ov := roiOverride(coordOCRNode, [4]int{40, 10, 220, 48})
	node, ok := ov[coordOCRNode].(map[string]any)
	if !ok {
		t.Fatalf("override missing node entry: %v", ov)
	}
	if node["roi"] != (maa.Rect{40, 10, 220, 48}) {
		t.Errorf("roi = %v", node["roi"])
	}
}

func TestFilteredBoxes(t *testing.T) {
	detail := `{"filtered": [{"box": [100, 50, 40, 20], "score": 0.93}, {"box": [0, 0, 10, 10], "score": 0.81}]}`
	boxes := filteredBoxes(detail)
	if len(boxes) != 2 {
		t.Fatalf("got %d boxes, want 2", len(boxes))
	}
	if boxes[0].rect != [4]int{100, 50, 40, 20} || boxes[0].score != 0.93 {
		t.Errorf("box[0] = %+v", boxes[0])
	}

	if boxes := filteredBoxes("{broken"); boxes != nil {
		t.Error("broken detail should yield nil")
	}
}
