package main

import "mileage/internal/app/server"

func main() {
	server.Run()
}
