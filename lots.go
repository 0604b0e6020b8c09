package profit

// lot is the quantity of an opening transaction not yet closed.
type lot struct {
	open      Transaction
	remaining int // always positive, direction is sign(open.Count)
}

func (l lot) direction() int { return sign(l.open.Count) }

// lots is a FIFO queue of open lots. All the lots in the queue share the same
// direction.
type lots []lot

// direction returns the direction of the lots in the queue, 0 when empty.
func (l lots) direction() int {
	if len(l) == 0 {
		return 0
	}
	return l[0].direction()
}

// push appends a new lot of quantity count from the open transaction.
func (l lots) push(open Transaction, count int) lots {
	return append(l, lot{open: open, remaining: count})
}

// close consumes quantity from the oldest lots first. For each lot touched it
// calls matched with the lot's opening transaction and the quantity taken. It
// returns the remaining lots and the quantity that could not be matched.
func (l lots) close(quantity int, matched func(open Transaction, count int)) (lots, int) {
	for len(l) > 0 && quantity > 0 {
		take := min(quantity, l[0].remaining)
		matched(l[0].open, take)
		l[0].remaining -= take
		quantity -= take
		if l[0].remaining == 0 {
			l = l[1:]
		}
	}
	return l, quantity
}

// total returns the quantity held in all lots.
func (l lots) total() int {
	var n int
	for _, lt := range l {
		n += lt.remaining
	}
	return n
}
