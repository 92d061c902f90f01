package util

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

var idNode *snowflake.Node

// InitSnowflake 初始化雪花 ID 节点（仅需在进程启动时调用一次）。
// 节点号默认 1，多实例部署时通过 SNOWFLAKE_NODE 区分。
func InitSnowflake() error {
	nodeID := int64(1)
	if raw := os.Getenv("SNOWFLAKE_NODE"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SNOWFLAKE_NODE: %w", err)
		}
		nodeID = parsed
	}

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("create snowflake node failed: %w", err)
	}
	idNode = node
	return nil
}

// NextID 生成新的雪花 ID。
// 未初始化时退化为惰性初始化（测试场景），生产入口应显式调用 InitSnowflake。
func NextID() int64 {
	if idNode == nil {
		_ = InitSnowflake()
	}
	return idNode.Generate().Int64()
}
