package services

import "sync"

// matchLocks 每场比赛一把互斥锁,保证同一比赛同一时刻最多
// 一个在途变更。不同比赛互不阻塞。锁按需创建,比赛量级很小,
// 不做回收。
type matchLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newMatchLocks() *matchLocks {
	return &matchLocks{
		locks: make(map[int64]*sync.Mutex),
	}
}

// get 获取指定比赛的锁,由调用方 Lock/Unlock
func (l *matchLocks) get(matchID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[matchID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[matchID] = lock
	}
	return lock
}
