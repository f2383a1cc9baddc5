package calc

// =============================================================================
// VALUE ARITHMETIC
// =============================================================================
//
// Every helper propagates undefined inputs. Division by zero yields an
// undefined value, never 0.

// safeDiv divides num by den.
func safeDiv(num, den Value) Value {
	if !num.Valid || !den.Valid || den.Float == 0 {
		return None()
	}
	return Some(num.Float / den.Float)
}

func add(a, b Value) Value {
	if !a.Valid || !b.Valid {
		return None()
	}
	return Some(a.Float + b.Float)
}

func sub(a, b Value) Value {
	if !a.Valid || !b.Valid {
		return None()
	}
	return Some(a.Float - b.Float)
}

func scale(v Value, k float64) Value {
	if !v.Valid {
		return None()
	}
	return Some(v.Float * k)
}

// mean2 averages two observations; both must be present.
func mean2(a, b Value) Value {
	return scale(add(a, b), 0.5)
}

// GrowthRate returns (current / previous - 1) * 100, undefined when the
// previous value is absent or zero.
func GrowthRate(current, previous Value) Value {
	ratio := safeDiv(current, previous)
	if !ratio.Valid {
		return None()
	}
	return Some((ratio.Float - 1) * 100)
}
