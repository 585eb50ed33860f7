package routing

import "errors"

var (
	// ErrUnknownSubnetwork 子网没有注册路由表
	ErrUnknownSubnetwork = errors.New("routing: unknown subnetwork")

	// ErrSelf 不能把本地节点加入路由表
	ErrSelf = errors.New("routing: cannot add local node")
)
