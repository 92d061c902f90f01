package gateway

import "sync"

// ChannelRegistry 进程内频道注册表：频道 id -> 订阅连接集合。
// 频道以用户 uuid 命名；一条连接会订阅自己的频道和每个好友的频道，
// "投递给用户 X" 就是向频道 X 广播，天然覆盖 X 的多设备连接。
// 维护三套索引：
// - channels(channel -> clients) 广播用；
// - byClient(client -> channels) 退订用；
// - byUser(user -> connections) 在线判定与首连/末连判定用。
// 注册表只反映本进程的瞬时连接，进程重启后以库里的 is_online 为准。
type ChannelRegistry struct {
	mu       sync.RWMutex
	channels map[string]map[*Client]struct{}
	byClient map[*Client]map[string]struct{}
	byUser   map[string]map[*Client]struct{}
	shutdown bool
}

// NewChannelRegistry 创建频道注册表实例。
func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{
		channels: make(map[string]map[*Client]struct{}),
		byClient: make(map[*Client]map[string]struct{}),
		byUser:   make(map[string]map[*Client]struct{}),
	}
}

// Register 登记一条连接。
// 返回值语义：
// - first：这是该用户的第一条连接（调用方据此做一次性的上线动作）；
// - ok：false 表示注册表已进入关闭流程，连接应直接拒绝。
func (r *ChannelRegistry) Register(client *Client) (first, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shutdown {
		return false, false
	}

	conns, exists := r.byUser[client.UserUUID()]
	if !exists {
		conns = make(map[*Client]struct{})
		r.byUser[client.UserUUID()] = conns
	}
	conns[client] = struct{}{}
	return len(conns) == 1, true
}

// Unregister 注销一条连接并退订其全部频道。
// 返回 last=true 表示该用户已无存活连接（调用方据此做一次性的下线动作）。
func (r *ChannelRegistry) Unregister(client *Client) (last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveAllLocked(client)

	conns, exists := r.byUser[client.UserUUID()]
	if !exists {
		return false
	}
	if _, member := conns[client]; !member {
		return false
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(r.byUser, client.UserUUID())
		return true
	}
	return false
}

// Join 将连接订阅到频道。重复订阅是无害的幂等操作。
func (r *ChannelRegistry) Join(channel string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shutdown {
		return
	}

	subscribers, exists := r.channels[channel]
	if !exists {
		subscribers = make(map[*Client]struct{})
		r.channels[channel] = subscribers
	}
	subscribers[client] = struct{}{}

	joined, exists := r.byClient[client]
	if !exists {
		joined = make(map[string]struct{})
		r.byClient[client] = joined
	}
	joined[channel] = struct{}{}
}

// Leave 将连接从频道退订
func (r *ChannelRegistry) Leave(channel string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveOneLocked(channel, client)
}

// LeaveAll 将连接从其订阅的全部频道退订
func (r *ChannelRegistry) LeaveAll(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveAllLocked(client)
}

func (r *ChannelRegistry) leaveAllLocked(client *Client) {
	joined, exists := r.byClient[client]
	if !exists {
		return
	}
	for channel := range joined {
		if subscribers, ok := r.channels[channel]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(r.channels, channel)
			}
		}
	}
	delete(r.byClient, client)
}

func (r *ChannelRegistry) leaveOneLocked(channel string, client *Client) {
	if subscribers, ok := r.channels[channel]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(r.channels, channel)
		}
	}
	if joined, ok := r.byClient[client]; ok {
		delete(joined, channel)
		if len(joined) == 0 {
			delete(r.byClient, client)
		}
	}
}

// Broadcast 向频道的全部订阅者投递消息。
// 频道不存在或没有订阅者是静默 no-op（好友离线就是这种形态，
// 持久化的消息存储充当离线兜底）。返回成功入队的连接数。
func (r *ChannelRegistry) Broadcast(channel string, msg []byte) int {
	return r.BroadcastExcept(channel, nil, msg)
}

// BroadcastExcept 向频道广播但跳过指定连接。
// 发送方自己也订阅了好友的频道，定向事件（typing、newMessage、presence）
// 用排除语义避免回声。
func (r *ChannelRegistry) BroadcastExcept(channel string, except *Client, msg []byte) int {
	r.mu.RLock()
	subscribers, ok := r.channels[channel]
	if !ok || len(subscribers) == 0 {
		r.mu.RUnlock()
		return 0
	}
	clients := make([]*Client, 0, len(subscribers))
	for client := range subscribers {
		if client == except {
			continue
		}
		clients = append(clients, client)
	}
	r.mu.RUnlock()

	sent := 0
	for _, client := range clients {
		if client.Enqueue(msg) {
			sent++
		}
	}
	return sent
}

// IsUserOnline 判断用户在本进程是否有存活连接
func (r *ChannelRegistry) IsUserOnline(userUUID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userUUID]) > 0
}

// ConnectionCount 返回当前连接总数
func (r *ChannelRegistry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, conns := range r.byUser {
		count += len(conns)
	}
	return count
}

// Shutdown 阻止后续注册并关闭全部连接。
// 注册状态保持原样，由各连接的断开清理逐条 Unregister 回收：
// 这样末连判定（last）在关闭流程里依然成立，下线动作（持久化
// is_online、userOffline 广播）不会被跳过。
func (r *ChannelRegistry) Shutdown() {
	r.mu.Lock()
	if r.shutdown {
		r.mu.Unlock()
		return
	}
	r.shutdown = true

	clients := make([]*Client, 0)
	for _, conns := range r.byUser {
		for client := range conns {
			clients = append(clients, client)
		}
	}
	r.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}
