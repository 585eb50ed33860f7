// Package metrics 提供 ultralight 的 Prometheus 指标
//
// 所有采集器注册在私有 Registry 上，不污染全局默认 Registry；
// 宿主程序可以通过 Registry() 自行暴露。
//
// # 指标
//
//	名称                                    | 类型    | 标签
//	----------------------------------------|---------|-------
//	ultralight_reconstructions_total        | Counter | state
//	ultralight_fetch_failures_total         | Counter | part
//	ultralight_addressbook_rebuilds_total   | Counter |
//	ultralight_addressbook_buckets          | Gauge   |
//	ultralight_addressbook_peers            | Gauge   |
package metrics
