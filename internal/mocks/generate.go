package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name SnapshotRepository --dir ../domain/result --output domain/result --outpkg resultmock --filename snapshot_repository_mock.go
