package nes

import "testing"

func TestControllerShiftsButtonsInOrder(t *testing.T) {
	c := NewController()
	c.Set([8]bool{true, false, false, true, false, false, false, true}) // A, Start, Right
	c.write(1)
	c.write(0)
	want := []byte{1, 0, 0, 1, 0, 0, 0, 1}
	for i, w := range want {
		if got := c.read(); got != w {
			t.Errorf("read %d: got=%d, want=%d", i, got, w)
		}
	}
}

func TestControllerReturnsOneWhenExhausted(t *testing.T) {
	c := NewController()
	c.write(1)
	c.write(0)
	for i := 0; i < 8; i++ {
		c.read()
	}
	for i := 0; i < 3; i++ {
		if got := c.read(); got != 1 {
			t.Errorf("exhausted read: got=%d, want=1", got)
		}
	}
}

func TestControllerStrobeHighRepeatsButtonA(t *testing.T) {
	c := NewController()
	c.SetButton(ButtonA, true)
	c.write(1)
	for i := 0; i < 4; i++ {
		if got := c.read(); got != 1 {
			t.Errorf("strobed read %d: got=%d, want=1 (button A)", i, got)
		}
	}
	// Dropping the strobe restarts the walk from A.
	c.write(0)
	if got := c.read(); got != 1 {
		t.Errorf("first unstrobed read: got=%d, want=1", got)
	}
	if got := c.read(); got != 0 {
		t.Errorf("second unstrobed read: got=%d, want=0 (button B)", got)
	}
}

func TestSetButtonReplacesField(t *testing.T) {
	// SetButton clobbers the whole field, so a second held button drops
	// the first. Kept as-is, the batch Set entry point is what the host
	// uses.
	c := NewController()
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonStart, true)
	if c.buttons != 1<<ButtonStart {
		t.Errorf("buttons: got=0b%08b, want only Start", c.buttons)
	}
	c.SetButton(ButtonStart, false)
	if c.buttons != 0 {
		t.Errorf("buttons: got=0b%08b, want empty", c.buttons)
	}
}
