// devtoken 本地联调用：按配置中的密钥签发一个 Access Token
//
//	go run ./cmd/devtoken -user <user_id> -role inspector
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Chnix17/janitorial-sub000/config"
	"github.com/Chnix17/janitorial-sub000/internal/model"
	"github.com/Chnix17/janitorial-sub000/pkg/jwt"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	userID := flag.String("user", "", "用户 ID（必填）")
	role := flag.String("role", model.RoleStudent, "角色: admin | inspector | student")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "-user 不能为空")
		os.Exit(2)
	}
	switch *role {
	case model.RoleAdmin, model.RoleInspector, model.RoleStudent:
	default:
		fmt.Fprintf(os.Stderr, "未知角色: %s\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(*userID, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "签发失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
