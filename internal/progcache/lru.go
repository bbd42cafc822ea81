// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package progcache

// lruNode links one cache key into the recency list.
type lruNode[K comparable] struct {
	key  K
	prev *lruNode[K]
	next *lruNode[K]
}

// lruList orders keys from most recently used (head) to least (tail).
// Not thread-safe; Cache holds its mutex around every call.
type lruList[K comparable] struct {
	head *lruNode[K]
	tail *lruNode[K]
	len  int
}

func (l *lruList[K]) pushFront(key K) *lruNode[K] {
	n := &lruNode[K]{key: key}
	l.linkFront(n)
	return n
}

func (l *lruList[K]) touch(n *lruNode[K]) {
	if n == l.head {
		return
	}
	l.unlink(n)
	l.linkFront(n)
}

func (l *lruList[K]) popBack() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	n := l.tail
	l.unlink(n)
	return n.key, true
}

func (l *lruList[K]) linkFront(n *lruNode[K]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.len++
}

func (l *lruList[K]) unlink(n *lruNode[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.len--
}
