//go:build ignore

// launcher поднимает сервер artfolio и собирает CLI-клиента.
//
//	go run launcher.go
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"
)

const healthURL = "http://localhost:8080/healthz"

func main() {
	fmt.Println("Запуск artfolio...")

	clientName := "artfolio"
	if runtime.GOOS == "windows" {
		clientName = "artfolio.exe"
	}
	// запускаем сервер на фоне
	server := exec.Command("go", "run", "./cmd/server")
	server.Stdout = os.Stdout
	server.Stderr = os.Stderr

	if err := server.Start(); err != nil {
		fmt.Printf("Ошибка запуска сервера: %v\n", err)
		return
	}

	if !waitHealthy(30 * time.Second) {
		fmt.Println("Сервер не ответил на /healthz, смотри логи выше")
	}

	// собираем клиента
	if _, err := os.Stat(clientName); os.IsNotExist(err) {
		fmt.Println("Сборка клиента...")
		build := exec.Command("go", "build", "-o", clientName, "./cmd/artfolio")
		build.Stdout = os.Stdout
		build.Stderr = os.Stderr
		if err := build.Run(); err != nil {
			fmt.Printf("Ошибка сборки клиента: %v\n", err)
		}
		if runtime.GOOS != "windows" {
			os.Chmod(clientName, 0o755)
		}
	}

	fmt.Println("Сервер запущен")
	if runtime.GOOS == "windows" {
		fmt.Println("Данный терминал не закрывай. Открой новый и запускай: .\\artfolio.exe")
	} else {
		fmt.Println("Данный терминал не закрывай. Открой новый и запускай: ./artfolio")
	}

	server.Wait()
}

// waitHealthy опрашивает /healthz, пока сервер не ответит 200.
func waitHealthy(timeout time.Duration) bool {
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		res, err := client.Get(healthURL)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return false
}
