package domain

import "testing"

func TestIdentity4(t *testing.T) {
	m := Identity4()
	for i := 0; i < 16; i++ {
		want := 0.0
		if i%5 == 0 {
			want = 1.0
		}
		if m[i] != want {
			t.Errorf("m[%d] = %v, want %v", i, m[i], want)
		}
	}
}

func TestMat4Vectors(t *testing.T) {
	m := Mat4{
		1, 2, 3, 0,
		4, 5, 6, 0,
		7, 8, 9, 0,
		10, 11, 12, 1,
	}

	if got := m.SideVector(); got != [3]float64{1, 2, 3} {
		t.Errorf("SideVector() = %v", got)
	}
	if got := m.FrontVector(); got != [3]float64{4, 5, 6} {
		t.Errorf("FrontVector() = %v", got)
	}
	if got := m.UpVector(); got != [3]float64{7, 8, 9} {
		t.Errorf("UpVector() = %v", got)
	}
	if got := m.Translation(); got != [3]float64{10, 11, 12} {
		t.Errorf("Translation() = %v", got)
	}
}

func TestMat4MulVec3(t *testing.T) {
	m := Identity4()
	m[12], m[13], m[14] = 1, 2, 3

	got := m.MulVec3([3]float64{1, 1, 1})
	if got != [3]float64{2, 3, 4} {
		t.Errorf("MulVec3() = %v, want [2 3 4]", got)
	}

	m.SetIdentity()
	if m != Identity4() {
		t.Error("SetIdentity() did not reset the matrix")
	}
}
