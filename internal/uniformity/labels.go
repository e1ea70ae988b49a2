package uniformity

import "strconv"

// RowLabel names a lateral line the way field sheets do: the first line,
// then the lines at one and two thirds (always the 2nd and 3rd collected),
// the last one, otherwise the ordinal.
func RowLabel(row, total int) string {
	return positionLabel(row, total, "ª")
}

// EmitterLabel is RowLabel for emitters (masculine ordinals).
func EmitterLabel(column, total int) string {
	return positionLabel(column, total, "º")
}

func positionLabel(pos, total int, ordinal string) string {
	switch {
	case pos == 1:
		return "1" + ordinal
	case pos == 2:
		return "1/3"
	case pos == 3:
		return "2/3"
	case pos == total:
		return "Últ."
	}
	return strconv.Itoa(pos) + ordinal
}

// RepetitionLabel names the i-th repetition of a point: A, B, ... Z, AA, AB.
func RepetitionLabel(i int) string {
	if i < 0 {
		return ""
	}
	label := ""
	for n := i + 1; n > 0; n = (n - 1) / 26 {
		label = string(rune('A'+(n-1)%26)) + label
	}
	return label
}
