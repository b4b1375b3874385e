package config

type WorkerKeyStruct struct {
	TrendingRefresher string
}

var WorkerKey = &WorkerKeyStruct{
	TrendingRefresher: "trending_refresher",
}
